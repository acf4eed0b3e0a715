package integration

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"exam-grading-service/internal/app"
	"exam-grading-service/internal/domain"
	"exam-grading-service/internal/infra/memory"
	pgloader "exam-grading-service/internal/infra/postgres"
	infraredis "exam-grading-service/internal/infra/redis"
	"exam-grading-service/internal/infra/sqlstore"
	goredis "github.com/redis/go-redis/v9"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
)

func TestGradeSubmissionEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	store, err := sqlstore.Open(sqlstore.DriverPostgres, pgURL, 5*time.Second)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer store.Close()
	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	pool, err := pgloader.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}
	defer redisClient.Close()

	log := zap.NewNop()
	cache := infraredis.NewAnswerKeyCache(redisClient, pgloader.NewAnswerKeyLoader(pool), 5*time.Minute)
	feeds := memory.NewFeedStore()
	papers := app.NewPaperService(store, nil, cache, log)
	keys := app.NewAnswerKeyService(store, cache, nil, log)
	submissions := app.NewSubmissionService(store, store, feeds, nil, log)
	results := app.NewResultsService(store, store, store, store, feeds)

	paper, err := papers.Create(ctx, domain.PaperInput{Title: "Mathematics", DurationMinutes: 60, TotalMarks: 4})
	if err != nil {
		t.Fatalf("create paper: %v", err)
	}
	alice, err := store.CreateUser(ctx, domain.User{Username: "alice", DisplayName: "Alice"})
	if err != nil {
		t.Fatalf("create alice: %v", err)
	}
	bob, err := store.CreateUser(ctx, domain.User{Username: "bob", DisplayName: "Bob"})
	if err != nil {
		t.Fatalf("create bob: %v", err)
	}

	if _, err := submissions.Record(ctx, paper.ID, alice.ID, nil, 0); !errors.Is(err, domain.ErrNotGradable) {
		t.Fatalf("expected not gradable before key upload, got %v", err)
	}

	// Warm the cache with the empty key, then replace it.
	if key, err := keys.Get(ctx, paper.ID); err != nil || len(key) != 0 {
		t.Fatalf("expected empty key, got %v %v", key, err)
	}
	if err := keys.Replace(ctx, paper.ID, []domain.AnswerKeyEntry{
		{QuestionNumber: 1, CorrectOption: 1},
		{QuestionNumber: 2, CorrectOption: 2},
		{QuestionNumber: 3, CorrectOption: 3},
		{QuestionNumber: 4, CorrectOption: 4},
	}); err != nil {
		t.Fatalf("replace key: %v", err)
	}
	key, err := keys.Get(ctx, paper.ID)
	if err != nil || len(key) != 4 || key[4] != 4 {
		t.Fatalf("expected fresh key after replace, got %v %v", key, err)
	}

	sub, err := submissions.Record(ctx, paper.ID, alice.ID, []domain.Answer{
		{QuestionNumber: 1, SelectedOption: 1},
		{QuestionNumber: 2, SelectedOption: 3},
		{QuestionNumber: 4, SelectedOption: 4},
	}, 600)
	if err != nil {
		t.Fatalf("record alice: %v", err)
	}
	if sub.Score != 2 || sub.TotalQuestions != 4 || sub.ScorePercentage != 50 {
		t.Fatalf("unexpected score %+v", sub)
	}

	// Concurrent resubmissions from bob: exactly one wins.
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		conflicts int
	)
	for i := 0; i < 6; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := submissions.Record(ctx, paper.ID, bob.ID, []domain.Answer{{QuestionNumber: 1, SelectedOption: 1}}, 30)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, domain.ErrConflict):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()
	if succeeded != 1 || conflicts != 5 {
		t.Fatalf("expected one submission and five conflicts, got %d and %d", succeeded, conflicts)
	}

	// Concurrent replaces leave exactly one writer's key, never a merge.
	geo, err := papers.Create(ctx, domain.PaperInput{Title: "Geography", DurationMinutes: 30, TotalMarks: 4})
	if err != nil {
		t.Fatalf("create paper: %v", err)
	}
	writers := make([][]domain.AnswerKeyEntry, 4)
	for w := range writers {
		for q := 1; q <= w+2; q++ {
			writers[w] = append(writers[w], domain.AnswerKeyEntry{QuestionNumber: q * (w + 1), CorrectOption: domain.Option(w + 1)})
		}
	}
	for _, set := range writers {
		wg.Add(1)
		go func(set []domain.AnswerKeyEntry) {
			defer wg.Done()
			for i := 0; i < 10; i++ {
				if err := keys.Replace(ctx, geo.ID, set); err != nil {
					t.Errorf("concurrent replace: %v", err)
					return
				}
				if _, err := keys.Get(ctx, geo.ID); err != nil {
					t.Errorf("concurrent get: %v", err)
					return
				}
			}
		}(set)
	}
	wg.Wait()
	persisted, err := store.LoadAnswerKey(ctx, geo.ID)
	if err != nil {
		t.Fatalf("load key: %v", err)
	}
	winner := -1
	for w, set := range writers {
		if reflect.DeepEqual(persisted.Entries(), set) {
			winner = w
		}
	}
	if winner < 0 {
		t.Fatalf("answer key is an interleaving of concurrent replaces: %+v", persisted.Entries())
	}
	cached, err := keys.Get(ctx, geo.ID)
	if err != nil || !reflect.DeepEqual(cached, persisted) {
		t.Fatalf("cache disagrees with store after concurrent replaces: %v %v", cached, err)
	}

	// Replacing the key later never changes frozen scores.
	if err := keys.Replace(ctx, paper.ID, []domain.AnswerKeyEntry{{QuestionNumber: 1, CorrectOption: 8}}); err != nil {
		t.Fatalf("replace key again: %v", err)
	}
	list, err := results.ForPaper(ctx, paper.ID)
	if err != nil {
		t.Fatalf("results: %v", err)
	}
	if len(list) != 2 || list[0].StudentDisplayName != "Alice" || list[0].TotalCorrect != 2 || list[1].TotalCorrect != 1 {
		t.Fatalf("unexpected results %+v", list)
	}
	stored, err := store.GetSubmission(ctx, sub.ID)
	if err != nil {
		t.Fatalf("get submission: %v", err)
	}
	if len(stored.Breakdown) != 3 || stored.Breakdown[1].IsCorrect || stored.Breakdown[1].CorrectOption == nil || *stored.Breakdown[1].CorrectOption != 2 {
		t.Fatalf("unexpected frozen breakdown %+v", stored.Breakdown)
	}
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "grading", "POSTGRES_PASSWORD": "gradingpass", "POSTGRES_DB": "gradingdb"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForLog("database system is ready to accept connections").WithOccurrence(2).WithStartupTimeout(60 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start postgres: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	dsn := fmt.Sprintf("postgres://grading:gradingpass@%s:%s/gradingdb?sslmode=disable", host, port.Port())
	return dsn, func() {
		_ = container.Terminate(ctx)
	}
}

func startRedis(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start redis: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("redis host: %v", err)
	}
	port, err := container.MappedPort(ctx, "6379/tcp")
	if err != nil {
		t.Fatalf("redis port: %v", err)
	}
	url := fmt.Sprintf("redis://%s:%s", host, port.Port())
	return url, func() {
		_ = container.Terminate(ctx)
	}
}

func redisClientFromURL(url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return infraredis.NewClient(opts.Addr, opts.Password, opts.DB), nil
}

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}
