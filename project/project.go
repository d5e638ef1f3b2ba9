package project

import (
	"github.com/0xPolygon/cdk-gateway/log"
	"github.com/0xPolygon/cdk-gateway/subject"
	"github.com/0xPolygon/cdk-gateway/types"
)

// Service holds the project backend calls are scoped to
type Service struct {
	logger  *log.Logger
	current *subject.Subject[*types.Project]
}

// NewService starts with initial selected, nil for none
func NewService(logger *log.Logger, initial *types.Project) *Service {
	s := &Service{
		logger:  logger,
		current: subject.New[*types.Project](nil),
	}
	s.Switch(initial)

	return s
}

// Current returns a copy of the selected project, nil when none is selected
func (s *Service) Current() *types.Project {
	p := s.current.Value()
	if p == nil {
		return nil
	}
	res := *p

	return &res
}

// Subject is the observable selected project
func (s *Service) Subject() *subject.Subject[*types.Project] {
	return s.current
}

// Switch selects project. A nil or keyless project unselects.
func (s *Service) Switch(project *types.Project) {
	if project == nil || project.Key == "" {
		s.current.Set(nil)
		s.logger.Debug("unselected project")
		return
	}
	p := *project
	s.current.Set(&p)
	s.logger.Debugf("selected project %s", p.Key)
}

// Key returns the selected project key, empty when none is selected
func (s *Service) Key() string {
	if p := s.current.Value(); p != nil {
		return p.Key
	}

	return ""
}

// Metadata returns the metadata of the selected project
func (s *Service) Metadata() string {
	if p := s.current.Value(); p != nil {
		return p.Metadata
	}

	return ""
}
