package services

import (
	"context"
	"io"
	"net/http"
	"os"
	"time"

	appContext "github.com/alphabatem/common/context"
	"github.com/bytedance/sonic"
	"github.com/fazalrahmanedv/quizsync/dto"
	"github.com/fazalrahmanedv/quizsync/shared"
	log "github.com/sirupsen/logrus"
)

const (
	defaultCountriesURL = "https://restcountries.com/v3.1/all"
	defaultQuizURL      = "https://6789df4ddd587da7ac27e4c2.mockapi.io/api/v1/mcq/content"
)

var jsonAPI = sonic.Config{
	UseNumber:            true,
	EscapeHTML:           false,
	SortMapKeys:          false,
	CompactMarshaler:     true,
	NoQuoteTextMarshaler: true,
	NoNullSliceOrMap:     true,
}.Froze()

// ApiService is the remote client for the two content endpoints. Every
// failure maps onto the closed ApiError taxonomy.
type ApiService struct {
	appContext.DefaultService

	httpClient *http.Client
	networkSvc *NetworkService
	tokenSvc   *TokenService

	countriesURL string
	quizURL      string
}

const API_SVC = "api_svc"

// NewApiService wires the client explicitly, bypassing the service
// container. Empty URLs fall back to the defaults.
func NewApiService(network *NetworkService, tokens *TokenService, countriesURL, quizURL string) *ApiService {
	svc := &ApiService{
		networkSvc:   network,
		tokenSvc:     tokens,
		countriesURL: countriesURL,
		quizURL:      quizURL,
	}
	svc.applyDefaults()
	return svc
}

func (svc ApiService) Id() string {
	return API_SVC
}

func (svc *ApiService) Configure(ctx *appContext.Context) error {
	if svc.countriesURL == "" {
		svc.countriesURL = os.Getenv("COUNTRIES_API_URL")
	}
	if svc.quizURL == "" {
		svc.quizURL = os.Getenv("QUIZ_API_URL")
	}
	svc.applyDefaults()

	return svc.DefaultService.Configure(ctx)
}

func (svc *ApiService) Start() error {
	if svc.networkSvc == nil {
		svc.networkSvc = svc.Service(NETWORK_SVC).(*NetworkService)
	}
	if svc.tokenSvc == nil {
		svc.tokenSvc = svc.Service(TOKEN_SVC).(*TokenService)
	}
	return nil
}

func (svc *ApiService) applyDefaults() {
	if svc.countriesURL == "" {
		svc.countriesURL = defaultCountriesURL
	}
	if svc.quizURL == "" {
		svc.quizURL = defaultQuizURL
	}
	if svc.httpClient == nil {
		svc.httpClient = &http.Client{
			Timeout: 30 * time.Second,
		}
	}
}

// Reachable exposes the live network state for callers that skip the
// network entirely when offline.
func (svc *ApiService) Reachable() bool {
	return svc.networkSvc.Reachable()
}

// FetchCountries pulls the reference country list.
func (svc *ApiService) FetchCountries(ctx context.Context) ([]dto.CountryResponse, error) {
	var countries []dto.CountryResponse
	if err := svc.getJSON(ctx, svc.countriesURL, &countries); err != nil {
		return nil, err
	}
	return countries, nil
}

// FetchQuizzes pulls the quiz content list.
func (svc *ApiService) FetchQuizzes(ctx context.Context) ([]dto.QuizResponse, error) {
	var quizzes []dto.QuizResponse
	if err := svc.getJSON(ctx, svc.quizURL, &quizzes); err != nil {
		return nil, err
	}
	return quizzes, nil
}

func (svc *ApiService) getJSON(ctx context.Context, url string, dest interface{}) error {
	if !svc.Reachable() {
		return shared.NewApiError(shared.ApiErrUnreachable, nil)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return shared.NewApiError(shared.ApiErrTransport, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-cache")
	if svc.tokenSvc != nil {
		if token := svc.tokenSvc.AccessToken(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := svc.httpClient.Do(req)
	if err != nil {
		log.WithError(err).WithField("url", url).Error("Request failed")
		return shared.NewApiError(shared.ApiErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := shared.ApiErrorFromStatus(resp.StatusCode)
		log.WithFields(log.Fields{
			"url":    url,
			"status": resp.StatusCode,
			"kind":   apiErr.Kind,
		}).Warn("Request returned non-success status")
		return apiErr
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return shared.NewApiError(shared.ApiErrTransport, err)
	}
	if err := jsonAPI.Unmarshal(body, dest); err != nil {
		log.WithError(err).WithField("url", url).Error("Failed to decode response")
		return shared.NewApiError(shared.ApiErrParse, err)
	}
	return nil
}
