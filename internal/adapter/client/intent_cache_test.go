package client

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"isanbot/internal/domain/entity"
)

type IntentCacheSuite struct {
	suite.Suite

	listCalls int
	listErr   error
	intents   []entity.Intent
	now       time.Time
	cache     *IntentCache
}

func TestIntentCacheSuite(t *testing.T) {
	suite.Run(t, new(IntentCacheSuite))
}

func (s *IntentCacheSuite) SetupTest() {
	s.listCalls = 0
	s.listErr = nil
	s.intents = []entity.Intent{
		{
			ID:              "i1",
			DisplayName:     "larb.info",
			TrainingPhrases: []string{"ลาบหมูคืออะไร", "อยากรู้จักลาบ"},
			Responses:       []string{"ลาบหมูคืออาหารอีสาน"},
		},
		{
			ID:              "i2",
			DisplayName:     "somtam.info",
			TrainingPhrases: []string{"ส้มตำคืออะไร"},
			Responses:       []string{"ส้มตำคือตำมะละกอ"},
		},
	}
	s.now = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	s.cache = NewIntentCache(func(ctx context.Context) ([]entity.Intent, error) {
		s.listCalls++
		if s.listErr != nil {
			return nil, s.listErr
		}
		return s.intents, nil
	}, time.Hour)
	s.cache.now = func() time.Time { return s.now }
}

func (s *IntentCacheSuite) TestGet_CachesWithinTTL() {
	_, err := s.cache.Get(context.Background(), false)
	s.Require().NoError(err)
	_, err = s.cache.Get(context.Background(), false)
	s.Require().NoError(err)
	s.Equal(1, s.listCalls)
}

func (s *IntentCacheSuite) TestGet_RefreshesAfterTTL() {
	_, err := s.cache.Get(context.Background(), false)
	s.Require().NoError(err)

	s.now = s.now.Add(2 * time.Hour)
	_, err = s.cache.Get(context.Background(), false)
	s.Require().NoError(err)
	s.Equal(2, s.listCalls)
}

func (s *IntentCacheSuite) TestGet_ForceRefreshBypassesTTL() {
	_, err := s.cache.Get(context.Background(), false)
	s.Require().NoError(err)
	_, err = s.cache.Get(context.Background(), true)
	s.Require().NoError(err)
	s.Equal(2, s.listCalls)
}

func (s *IntentCacheSuite) TestGet_ServesStaleOnRefreshError() {
	_, err := s.cache.Get(context.Background(), false)
	s.Require().NoError(err)

	s.listErr = errors.New("index down")
	s.now = s.now.Add(2 * time.Hour)

	intents, err := s.cache.Get(context.Background(), false)
	s.Require().NoError(err)
	s.Len(intents, 2)
}

func (s *IntentCacheSuite) TestGet_ColdCacheErrorPropagates() {
	s.listErr = errors.New("index down")
	_, err := s.cache.Get(context.Background(), false)
	s.Error(err)
}

func (s *IntentCacheSuite) TestFindByText_MatchOrder() {
	tests := []struct {
		name string
		text string
		want string
	}{
		{name: "exact display name", text: "larb.info", want: "larb.info"},
		{name: "exact training phrase", text: "ส้มตำคืออะไร", want: "somtam.info"},
		{name: "partial display name", text: "somtam", want: "somtam.info"},
		{name: "partial training phrase", text: "รู้จักลาบ", want: "larb.info"},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			intent, err := s.cache.FindByText(context.Background(), tt.text)
			s.Require().NoError(err)
			s.Require().NotNil(intent)
			s.Equal(tt.want, intent.DisplayName)
		})
	}
}

func (s *IntentCacheSuite) TestFindByText_NoMatch() {
	intent, err := s.cache.FindByText(context.Background(), "อากาศวันนี้")
	s.Require().NoError(err)
	s.Nil(intent)
}
