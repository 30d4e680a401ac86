package app

import (
	"context"

	"autoreel/internal/distribution"
	"autoreel/internal/distribution/youtube"
	"autoreel/internal/history"
	"autoreel/internal/knowledge"
	"autoreel/internal/reel"
	"autoreel/internal/script"
	"autoreel/internal/videogen"
	"autoreel/internal/workflow"
	"autoreel/pkg/config"
)

// CaptionSuggester produces alternative caption texts for a finished
// script. Optional; the UI hides the feature when it is nil.
type CaptionSuggester interface {
	CaptionOptions(ctx context.Context, req reel.ScriptRequest, finalScript string, count int) ([]string, error)
}

type Service struct {
	cfg          *config.Config
	orchestrator *workflow.Orchestrator
	scripts      script.Generator
	captions     CaptionSuggester
	videos       videogen.Generator
	router       *distribution.Router
	store        history.Store
	graph        knowledge.Graph
	ytAuth       *youtube.Auth
}

type ServiceOptions struct {
	Config       *config.Config
	Orchestrator *workflow.Orchestrator
	Scripts      script.Generator
	Captions     CaptionSuggester
	Videos       videogen.Generator
	Router       *distribution.Router
	Store        history.Store
	Graph        knowledge.Graph
	YouTubeAuth  *youtube.Auth
}

func NewService(opts ServiceOptions) *Service {
	return &Service{
		cfg:          opts.Config,
		orchestrator: opts.Orchestrator,
		scripts:      opts.Scripts,
		captions:     opts.Captions,
		videos:       opts.Videos,
		router:       opts.Router,
		store:        opts.Store,
		graph:        opts.Graph,
		ytAuth:       opts.YouTubeAuth,
	}
}

func (s *Service) Config() *config.Config { return s.cfg }

func (s *Service) Orchestrator() *workflow.Orchestrator { return s.orchestrator }

func (s *Service) Captions() CaptionSuggester { return s.captions }

func (s *Service) YouTubeAuth() *youtube.Auth { return s.ytAuth }
