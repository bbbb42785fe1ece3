package services

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/fazalrahmanedv/quizsync/dto"
	"github.com/fazalrahmanedv/quizsync/shared"
)

type fakeApi struct {
	reachable    bool
	countries    []dto.CountryResponse
	quizzes      []dto.QuizResponse
	countriesErr error
	quizzesErr   error
	countryCalls int
	quizCalls    int
}

func (f *fakeApi) Reachable() bool { return f.reachable }

func (f *fakeApi) FetchCountries(_ context.Context) ([]dto.CountryResponse, error) {
	f.countryCalls++
	return f.countries, f.countriesErr
}

func (f *fakeApi) FetchQuizzes(_ context.Context) ([]dto.QuizResponse, error) {
	f.quizCalls++
	return f.quizzes, f.quizzesErr
}

type fakeMedia struct {
	mu    sync.Mutex
	calls map[string]int
	err   error
}

func (f *fakeMedia) FetchAndCache(_ context.Context, url string) (Blob, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls == nil {
		f.calls = make(map[string]int)
	}
	f.calls[url]++
	if f.err != nil {
		return Blob{}, f.err
	}
	return Blob{Data: []byte("img"), ContentType: "image/png"}, nil
}

func newTestSyncService(t *testing.T, api *fakeApi) (*QuizRepoService, *fakeMedia) {
	t.Helper()

	sqlSvc := NewSqliteService(filepath.Join(t.TempDir(), "test.db"))
	if err := sqlSvc.Start(); err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	media := &fakeMedia{}
	return NewQuizRepoService(sqlSvc, api, media), media
}

func remoteQuiz(uuid string, sort, correct int) dto.QuizResponse {
	u := uuid
	return dto.QuizResponse{
		UUID:          &u,
		QuestionType:  shared.QuestionTypeText,
		Question:      "Question " + uuid,
		Option1:       "A",
		Option2:       "B",
		Option3:       "C",
		Option4:       "D",
		CorrectOption: correct,
		Sort:          sort,
		Solution:      []dto.SolutionResponse{{ContentType: shared.QuestionTypeText, ContentData: "Explanation " + uuid}},
	}
}

func TestSyncCountriesStoreIsTruth(t *testing.T) {
	api := &fakeApi{
		reachable: true,
		countries: []dto.CountryResponse{
			{Name: dto.CountryName{Common: "India"}, Flag: "🇮🇳"},
			{Name: dto.CountryName{Common: "Brazil"}, Flag: "🇧🇷"},
		},
	}
	svc, _ := newTestSyncService(t, api)
	ctx := context.Background()

	first, err := svc.SyncCountries(ctx)
	if err != nil {
		t.Fatalf("first sync failed: %v", err)
	}
	if len(first) != 2 {
		t.Fatalf("got %d countries, want 2", len(first))
	}
	if first[0].ID == "" {
		t.Error("persisted country should carry a store-assigned id")
	}
	// Sorted by name: Brazil before India.
	if first[0].Name != "Brazil" || first[1].Name != "India" {
		t.Errorf("countries not sorted by name: %s, %s", first[0].Name, first[1].Name)
	}

	second, err := svc.SyncCountries(ctx)
	if err != nil {
		t.Fatalf("second sync failed: %v", err)
	}
	if api.countryCalls != 1 {
		t.Errorf("network consulted %d times, want 1 (store is truth once populated)", api.countryCalls)
	}
	if len(second) != 2 {
		t.Errorf("got %d countries on second sync, want 2", len(second))
	}
}

func TestSyncCountriesEmptyRemoteList(t *testing.T) {
	api := &fakeApi{reachable: true, countries: []dto.CountryResponse{}}
	svc, _ := newTestSyncService(t, api)

	// An empty remote list is a valid payload: persist nothing, return the
	// (empty) stored view, no error.
	got, err := svc.SyncCountries(context.Background())
	if err != nil {
		t.Fatalf("empty remote list should not fail the sync: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("got %d countries, want 0", len(got))
	}

	if err := svc.Repository().SaveCountries(nil); err != nil {
		t.Errorf("saving an empty batch should be a no-op: %v", err)
	}
}

func TestSyncCountriesFetchError(t *testing.T) {
	api := &fakeApi{
		reachable:    true,
		countriesErr: shared.NewApiError(shared.ApiErrServer, nil),
	}
	svc, _ := newTestSyncService(t, api)

	_, err := svc.SyncCountries(context.Background())
	if !shared.IsApiErrorKind(err, shared.ApiErrServer) {
		t.Errorf("got %v, want SERVER_ERROR to propagate", err)
	}
	if got := svc.Repository().GetCountries(); len(got) != 0 {
		t.Errorf("failed sync must not persist anything, found %d rows", len(got))
	}
}

func TestSyncQuizzesReplacesStoredSet(t *testing.T) {
	api := &fakeApi{
		reachable: true,
		quizzes:   []dto.QuizResponse{remoteQuiz("old-1", 1, 1), remoteQuiz("old-2", 2, 1)},
	}
	svc, _ := newTestSyncService(t, api)
	ctx := context.Background()

	if _, err := svc.SyncQuizzes(ctx); err != nil {
		t.Fatalf("first sync failed: %v", err)
	}

	api.quizzes = []dto.QuizResponse{remoteQuiz("new-1", 1, 1)}
	got, err := svc.SyncQuizzes(ctx)
	if err != nil {
		t.Fatalf("second sync failed: %v", err)
	}

	if len(got) != 1 {
		t.Fatalf("got %d quizzes, want 1 (network is truth)", len(got))
	}
	if got[0].UUID == nil || *got[0].UUID != "new-1" {
		t.Errorf("uuid = %v, want new-1", got[0].UUID)
	}
	if stored := svc.Repository().GetQuizzes(); len(stored) != 1 {
		t.Errorf("old rows survived the resync: %d stored", len(stored))
	}
}

func TestSyncQuizzesNormalization(t *testing.T) {
	quiz := remoteQuiz("n-1", 1, 3)
	quiz.QuestionType = ""
	quiz.Solution = append(quiz.Solution, dto.SolutionResponse{ContentType: "text", ContentData: "ignored second"})

	api := &fakeApi{reachable: true, quizzes: []dto.QuizResponse{quiz}}
	svc, _ := newTestSyncService(t, api)

	got, err := svc.SyncQuizzes(context.Background())
	if err != nil {
		t.Fatalf("sync failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d quizzes, want 1", len(got))
	}

	if got[0].CorrectOption != 2 {
		t.Errorf("CorrectOption = %d, want 2 (wire value 3 normalized to 0-based)", got[0].CorrectOption)
	}
	if got[0].QuestionType != shared.QuestionTypeText {
		t.Errorf("QuestionType = %q, want default %q", got[0].QuestionType, shared.QuestionTypeText)
	}
	if got[0].Solution == nil || got[0].Solution.ContentData != "Explanation n-1" {
		t.Errorf("expected first solution only, got %+v", got[0].Solution)
	}
}

func TestSyncQuizzesValidityFilter(t *testing.T) {
	invalid := remoteQuiz("bad-1", 6, 1)
	invalid.Option3 = ""

	api := &fakeApi{reachable: true, quizzes: []dto.QuizResponse{
		remoteQuiz("ok-1", 1, 1),
		remoteQuiz("ok-2", 2, 2),
		remoteQuiz("ok-3", 3, 3),
		remoteQuiz("ok-4", 4, 4),
		remoteQuiz("ok-5", 5, 1),
		invalid,
	}}
	svc, _ := newTestSyncService(t, api)

	got, err := svc.SyncQuizzes(context.Background())
	if err != nil {
		t.Fatalf("sync failed: %v", err)
	}

	if len(got) != 5 {
		t.Errorf("playable view has %d quizzes, want 5", len(got))
	}
	// The invalid row stays persisted, only the view filters it.
	if stored := svc.Repository().GetQuizzes(); len(stored) != 6 {
		t.Errorf("store has %d rows, want all 6 persisted", len(stored))
	}
}

func TestSyncQuizzesOfflineServesStored(t *testing.T) {
	api := &fakeApi{reachable: true, quizzes: []dto.QuizResponse{remoteQuiz("q-1", 1, 1)}}
	svc, _ := newTestSyncService(t, api)
	ctx := context.Background()

	if _, err := svc.SyncQuizzes(ctx); err != nil {
		t.Fatalf("seed sync failed: %v", err)
	}

	api.reachable = false
	got, err := svc.SyncQuizzes(ctx)
	if err != nil {
		t.Fatalf("offline sync returned error: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("offline sync returned %d quizzes, want the stored 1", len(got))
	}
	if api.quizCalls != 1 {
		t.Errorf("network consulted %d times, want 1 (offline skips the fetch)", api.quizCalls)
	}
}

func TestSyncQuizzesFetchFailureKeepsStore(t *testing.T) {
	api := &fakeApi{reachable: true, quizzes: []dto.QuizResponse{remoteQuiz("q-1", 1, 1)}}
	svc, _ := newTestSyncService(t, api)
	ctx := context.Background()

	if _, err := svc.SyncQuizzes(ctx); err != nil {
		t.Fatalf("seed sync failed: %v", err)
	}

	api.quizzesErr = shared.ApiErrorFromStatus(503)
	if _, err := svc.SyncQuizzes(ctx); !shared.IsApiErrorKind(err, shared.ApiErrServer) {
		t.Fatalf("got %v, want SERVER_ERROR to propagate", err)
	}

	// A failed fetch must never wipe existing content.
	if stored := svc.Repository().GetQuizzes(); len(stored) != 1 {
		t.Errorf("store has %d rows after failed sync, want 1", len(stored))
	}
}

func TestSessionFlagsSurviveResync(t *testing.T) {
	api := &fakeApi{reachable: true, quizzes: []dto.QuizResponse{remoteQuiz("keep", 1, 1), remoteQuiz("other", 2, 1)}}
	svc, _ := newTestSyncService(t, api)
	ctx := context.Background()

	first, err := svc.SyncQuizzes(ctx)
	if err != nil {
		t.Fatalf("seed sync failed: %v", err)
	}

	var keptID string
	for _, q := range first {
		if *q.UUID == "keep" {
			keptID = q.ID
		}
	}
	if keptID == "" {
		t.Fatal("seeded quiz not found")
	}

	if err := svc.Repository().UpdateBookmark(keptID, true); err != nil {
		t.Fatalf("bookmark failed: %v", err)
	}
	selected, remaining := 2, 9
	if err := svc.Repository().SaveQuizState(keptID, &selected, &remaining, true, false); err != nil {
		t.Fatalf("state save failed: %v", err)
	}

	second, err := svc.SyncQuizzes(ctx)
	if err != nil {
		t.Fatalf("resync failed: %v", err)
	}

	for _, q := range second {
		switch *q.UUID {
		case "keep":
			if !q.HasBookmarked || !q.Answered {
				t.Error("bookmark and answered flags should survive the resync")
			}
			if q.SelectedOption == nil || *q.SelectedOption != 2 {
				t.Errorf("SelectedOption = %v, want 2", q.SelectedOption)
			}
			if q.RemainingSeconds == nil || *q.RemainingSeconds != 9 {
				t.Errorf("RemainingSeconds = %v, want 9", q.RemainingSeconds)
			}
			if q.ID == keptID {
				t.Error("resynced row should carry a fresh store id")
			}
		case "other":
			if q.HasBookmarked || q.Answered {
				t.Error("flags leaked onto an untouched quiz")
			}
		}
	}
}

func TestSyncQuizzesPrefetchesMedia(t *testing.T) {
	imageQuiz := remoteQuiz("img-1", 1, 1)
	imageQuiz.QuestionType = shared.QuestionTypeImage
	imageQuiz.Question = "http://cdn/question.png"
	imageQuiz.Solution = []dto.SolutionResponse{{ContentType: shared.QuestionTypeImage, ContentData: "http://cdn/solution.png"}}

	api := &fakeApi{reachable: true, quizzes: []dto.QuizResponse{imageQuiz, remoteQuiz("text-1", 2, 1)}}
	svc, media := newTestSyncService(t, api)

	if _, err := svc.SyncQuizzes(context.Background()); err != nil {
		t.Fatalf("sync failed: %v", err)
	}

	if media.calls["http://cdn/question.png"] != 1 {
		t.Error("image question was not prefetched")
	}
	if media.calls["http://cdn/solution.png"] != 1 {
		t.Error("image solution was not prefetched")
	}
	if len(media.calls) != 2 {
		t.Errorf("prefetched %d urls, want only the 2 image urls", len(media.calls))
	}

	solutions := svc.Repository().GetImageSolutions()
	if len(solutions) != 1 || !solutions[0].Downloaded {
		t.Errorf("prefetched solution should be flagged downloaded: %+v", solutions)
	}
}

func TestSyncQuizzesPrefetchFailureIsSoft(t *testing.T) {
	imageQuiz := remoteQuiz("img-1", 1, 1)
	imageQuiz.QuestionType = shared.QuestionTypeImage
	imageQuiz.Question = "http://cdn/broken.png"

	api := &fakeApi{reachable: true, quizzes: []dto.QuizResponse{imageQuiz}}
	svc, media := newTestSyncService(t, api)
	media.err = fmt.Errorf("connection reset")

	if _, err := svc.SyncQuizzes(context.Background()); err != nil {
		t.Errorf("prefetch failure must not fail the sync: %v", err)
	}
}

func TestBookmarkedQuizzes(t *testing.T) {
	api := &fakeApi{reachable: true, quizzes: []dto.QuizResponse{remoteQuiz("q-1", 1, 1), remoteQuiz("q-2", 2, 1)}}
	svc, _ := newTestSyncService(t, api)

	synced, err := svc.SyncQuizzes(context.Background())
	if err != nil {
		t.Fatalf("sync failed: %v", err)
	}

	if err := svc.Repository().UpdateBookmark(synced[0].ID, true); err != nil {
		t.Fatalf("bookmark failed: %v", err)
	}

	got := svc.BookmarkedQuizzes()
	if len(got) != 1 || got[0].ID != synced[0].ID {
		t.Errorf("got %d bookmarked quizzes, want exactly the toggled one", len(got))
	}
}
