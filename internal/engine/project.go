package engine

import (
	"errors"
	"fmt"
)

// ProjectStatus is the lifecycle state of a project.
type ProjectStatus string

const (
	InDevelopment  ProjectStatus = "in_development"
	AwaitingReview ProjectStatus = "awaiting_review"
	Published      ProjectStatus = "published"
	Failed         ProjectStatus = "failed"
)

// ErrInvalidTransition is returned for a project state change the lifecycle
// does not allow.
var ErrInvalidTransition = errors.New("invalid project transition")

// Project is a build in development.
type Project struct {
	ID                string        `json:"id"`
	Name              string        `json:"name"`
	SoftwareTypeID    string        `json:"software_type_id"`
	ComponentIDs      []string      `json:"component_ids"`
	TotalCost         float64       `json:"total_cost"`
	MonthsLeft        int           `json:"months_left"`
	TotalMonths       int           `json:"total_months"`
	StartMonth        int           `json:"start_month"`
	LegacyRatingBonus float64       `json:"legacy_rating_bonus,omitempty"`
	Status            ProjectStatus `json:"status"`
	Review            *Review       `json:"review,omitempty"`
}

// Active reports whether the project still holds energy.
func (p *Project) Active() bool {
	return p.Status == InDevelopment || p.Status == AwaitingReview
}

// Ready reports whether development finished and the review step is due.
func (p *Project) Ready() bool {
	return p.Status == InDevelopment && p.MonthsLeft <= 0
}

// Blocking reports whether the project must be resolved before another tick.
func (p *Project) Blocking() bool {
	return p.Ready() || p.Status == AwaitingReview
}

// advance counts one month of development.
func (p *Project) advance() {
	if p.Status == InDevelopment && p.MonthsLeft > 0 {
		p.MonthsLeft--
	}
}

// BeginReview attaches a review to a finished project.
func (p *Project) BeginReview(r Review) error {
	if !p.Ready() {
		return fmt.Errorf("%w: %s is %s with %d months left", ErrInvalidTransition, p.ID, p.Status, p.MonthsLeft)
	}
	p.Review = &r
	p.Status = AwaitingReview
	return nil
}

// Publish marks a reviewed project as shipped.
func (p *Project) Publish() error {
	if p.Status != AwaitingReview {
		return fmt.Errorf("%w: cannot publish %s from %s", ErrInvalidTransition, p.ID, p.Status)
	}
	p.Status = Published
	return nil
}

// Fail marks a reviewed project as a terminal launch failure.
func (p *Project) Fail() error {
	if p.Status != AwaitingReview {
		return fmt.Errorf("%w: cannot fail %s from %s", ErrInvalidTransition, p.ID, p.Status)
	}
	p.Status = Failed
	return nil
}
