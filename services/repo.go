// services/repo.go
package services

import (
	"context"
	"time"

	appContext "github.com/alphabatem/common/context"
	"github.com/fazalrahmanedv/quizsync/dto"
	"github.com/fazalrahmanedv/quizsync/model"
	"github.com/fazalrahmanedv/quizsync/services/repositories"
	"github.com/fazalrahmanedv/quizsync/shared"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// ApiClient is the remote boundary the synchronizer depends on; satisfied
// by ApiService and by test doubles.
type ApiClient interface {
	Reachable() bool
	FetchCountries(ctx context.Context) ([]dto.CountryResponse, error)
	FetchQuizzes(ctx context.Context) ([]dto.QuizResponse, error)
}

// MediaCacher is the prefetch boundary.
type MediaCacher interface {
	FetchAndCache(ctx context.Context, url string) (Blob, error)
}

// QuizRepoService orchestrates the two pull operations: store-is-truth for
// the country reference list, network-is-truth for quiz content.
type QuizRepoService struct {
	appContext.DefaultService

	sqlSvc   *SqliteService
	apiSvc   ApiClient
	mediaSvc MediaCacher
	repo     *repositories.QuizRepository
}

const QUIZ_REPO_SVC = "quiz_repo_svc"

// NewQuizRepoService wires the synchronizer explicitly. sqlSvc must have
// been started before use.
func NewQuizRepoService(sqlSvc *SqliteService, api ApiClient, media MediaCacher) *QuizRepoService {
	return &QuizRepoService{sqlSvc: sqlSvc, apiSvc: api, mediaSvc: media}
}

func (svc QuizRepoService) Id() string {
	return QUIZ_REPO_SVC
}

func (svc *QuizRepoService) Configure(ctx *appContext.Context) error {
	return svc.DefaultService.Configure(ctx)
}

func (svc *QuizRepoService) Start() error {
	if svc.sqlSvc == nil {
		svc.sqlSvc = svc.Service(SQLITE_SVC).(*SqliteService)
	}
	if svc.apiSvc == nil {
		svc.apiSvc = svc.Service(API_SVC).(*ApiService)
	}
	if svc.mediaSvc == nil {
		svc.mediaSvc = svc.Service(MEDIA_SVC).(*MediaService)
	}
	svc.repo = repositories.NewQuizRepository(svc.sqlSvc.Db())
	return nil
}

// Repository exposes the backing store for consumers that persist session
// state (bookmarks, timers) directly.
func (svc *QuizRepoService) Repository() *repositories.QuizRepository {
	if svc.repo == nil {
		svc.repo = repositories.NewQuizRepository(svc.sqlSvc.Db())
	}
	return svc.repo
}

// SyncCountries returns the stored country list when one exists; the store
// is truth once populated and the network is never consulted again. An
// empty store triggers one remote fetch, a persist and a re-read so the
// caller sees store-assigned identity.
func (svc *QuizRepoService) SyncCountries(ctx context.Context) ([]model.Country, error) {
	timer := prometheusTimer("countries")
	defer timer()

	if saved := svc.Repository().GetCountries(); len(saved) > 0 {
		log.Debug("Returning cached countries")
		return saved, nil
	}

	remote, err := svc.apiSvc.FetchCountries(ctx)
	if err != nil {
		syncsTotal.WithLabelValues("countries", "failure").Inc()
		log.WithError(err).Error("Failed to fetch countries")
		return nil, err
	}

	countries := make([]model.Country, 0, len(remote))
	for _, c := range remote {
		countries = append(countries, model.Country{
			Name: c.Name.Common,
			Flag: c.Flag,
		})
	}

	if err := svc.Repository().SaveCountries(countries); err != nil {
		syncsTotal.WithLabelValues("countries", "failure").Inc()
		return nil, svc.sqlSvc.HandleError("save countries", err)
	}

	syncsTotal.WithLabelValues("countries", "success").Inc()
	return svc.Repository().GetCountries(), nil
}

// SyncQuizzes replaces the stored quiz set from the network when reachable,
// warms the media cache and returns the validity-filtered view. Offline is
// not an error: the stored playable subset is served as-is.
func (svc *QuizRepoService) SyncQuizzes(ctx context.Context) ([]model.Quiz, error) {
	timer := prometheusTimer("quizzes")
	defer timer()

	if !svc.apiSvc.Reachable() {
		log.Warn("No network, serving stored quizzes")
		syncsTotal.WithLabelValues("quizzes", "offline").Inc()
		return svc.Repository().GetPlayableQuizzes(), nil
	}

	remote, err := svc.apiSvc.FetchQuizzes(ctx)
	if err != nil {
		syncsTotal.WithLabelValues("quizzes", "failure").Inc()
		log.WithError(err).Error("Failed to fetch quizzes")
		return nil, err
	}

	// Session flags survive the wipe keyed on remote UUID.
	flags := svc.Repository().GetSessionFlags()

	if err := svc.Repository().DeleteAllQuizzes(); err != nil {
		syncsTotal.WithLabelValues("quizzes", "failure").Inc()
		return nil, svc.sqlSvc.HandleError("delete quizzes", err)
	}

	if err := svc.Repository().SaveQuizzes(mapQuizzes(remote, flags)); err != nil {
		syncsTotal.WithLabelValues("quizzes", "failure").Inc()
		return nil, svc.sqlSvc.HandleError("save quizzes", err)
	}

	svc.prefetchImages(ctx)

	syncsTotal.WithLabelValues("quizzes", "success").Inc()
	return svc.Repository().GetPlayableQuizzes(), nil
}

// BookmarkedQuizzes returns the user's bookmarked quizzes.
func (svc *QuizRepoService) BookmarkedQuizzes() []model.Quiz {
	return svc.Repository().GetBookmarkedQuizzes()
}

func mapQuizzes(remote []dto.QuizResponse, flags map[string]repositories.SessionFlags) []model.Quiz {
	quizzes := make([]model.Quiz, 0, len(remote))
	for _, r := range remote {
		quiz := model.Quiz{
			UUID:          r.UUID,
			Question:      r.Question,
			QuestionType:  r.QuestionType,
			Option1:       r.Option1,
			Option2:       r.Option2,
			Option3:       r.Option3,
			Option4:       r.Option4,
			CorrectOption: r.CorrectOption - 1, // wire value is 1-based
			Sort:          r.Sort,
		}
		if quiz.QuestionType == "" {
			quiz.QuestionType = shared.QuestionTypeText
		}

		if len(r.Solution) > 0 {
			s := r.Solution[0]
			contentType := s.ContentType
			if contentType == "" {
				contentType = shared.QuestionTypeText
			}
			quiz.Solution = &model.QuizSolution{
				ContentType: contentType,
				ContentData: s.ContentData,
			}
		}

		if r.UUID != nil {
			if f, ok := flags[*r.UUID]; ok {
				quiz.HasBookmarked = f.HasBookmarked
				quiz.Answered = f.Answered
				quiz.Skipped = f.Skipped
				quiz.SelectedOption = f.SelectedOption
				quiz.RemainingSeconds = f.RemainingSeconds
			}
		}

		quizzes = append(quizzes, quiz)
	}
	return quizzes
}

// prefetchImages warms the media cache for every image question and image
// solution. Tasks fan out concurrently and are all joined before return;
// failures are logged, never surfaced; a missing image degrades to an
// on-demand fetch from the view layer.
func (svc *QuizRepoService) prefetchImages(ctx context.Context) {
	imageQuizzes := svc.Repository().GetImageQuizzes()
	imageSolutions := svc.Repository().GetImageSolutions()

	log.WithFields(log.Fields{
		"quizzes":   len(imageQuizzes),
		"solutions": len(imageSolutions),
	}).Debug("Prefetching quiz media")

	g := new(errgroup.Group)

	for _, quiz := range imageQuizzes {
		url := quiz.Question
		if url == "" {
			continue
		}
		g.Go(func() error {
			if _, err := svc.mediaSvc.FetchAndCache(ctx, url); err != nil {
				prefetchFailuresTotal.Inc()
				log.WithError(err).WithField("url", url).Warn("Quiz image prefetch failed")
			}
			return nil
		})
	}

	for _, solution := range imageSolutions {
		url := solution.ContentData
		if url == "" {
			continue
		}
		solutionID := solution.ID
		g.Go(func() error {
			if _, err := svc.mediaSvc.FetchAndCache(ctx, url); err != nil {
				prefetchFailuresTotal.Inc()
				log.WithError(err).WithField("url", url).Warn("Solution image prefetch failed")
				return nil
			}
			if err := svc.Repository().MarkSolutionDownloaded(solutionID); err != nil {
				log.WithError(err).Warn("Failed to flag solution as downloaded")
			}
			return nil
		})
	}

	// Join barrier: the caller's re-read should see a best-effort warm cache.
	g.Wait()
}

func prometheusTimer(kind string) func() {
	start := time.Now()
	return func() {
		syncDurationSeconds.WithLabelValues(kind).Observe(time.Since(start).Seconds())
	}
}
