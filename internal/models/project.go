package models

import "time"

// Project is a creative endeavor owned by CreatorID.
type Project struct {
	ID              string       `json:"id"`
	Title           string       `json:"title"`
	Description     string       `json:"description"`
	PrimaryType     string       `json:"primaryType"`
	AdditionalTypes []string     `json:"additionalTypes"`
	Tags            []string     `json:"tags"`
	Creator         string       `json:"creator"`
	CreatorID       string       `json:"creatorId"`
	CreatedAt       time.Time    `json:"createdAt"`
	Likes           IDSet        `json:"likes"`
	Collaborators   IDSet        `json:"collaborators"`
	Files           []string     `json:"files,omitempty"`
	FundraisingGoal *float64     `json:"fundraisingGoal,omitempty"`
	Commitments     []Commitment `json:"commitments,omitempty"`
}

// Clone returns a deep copy of p.
func (p Project) Clone() Project {
	p.AdditionalTypes = cloneStrings(p.AdditionalTypes)
	p.Tags = cloneStrings(p.Tags)
	p.Files = cloneStrings(p.Files)
	if p.FundraisingGoal != nil {
		goal := *p.FundraisingGoal
		p.FundraisingGoal = &goal
	}
	if p.Commitments != nil {
		p.Commitments = append([]Commitment(nil), p.Commitments...)
	}
	return p
}

// NewProject is the input for creating a project.
type NewProject struct {
	Title           string   `json:"title" validate:"required"`
	Description     string   `json:"description" validate:"required"`
	PrimaryType     string   `json:"primaryType"`
	AdditionalTypes []string `json:"additionalTypes"`
	Tags            []string `json:"tags"`
	Files           []string `json:"files"`
	FundraisingGoal *float64 `json:"fundraisingGoal" validate:"omitempty,gt=0"`
}

// ProjectPatch holds fields to merge into a project. Files are appended to the
// existing attachments, never replacing them.
type ProjectPatch struct {
	Title           *string   `json:"title,omitempty"`
	Description     *string   `json:"description,omitempty"`
	PrimaryType     *string   `json:"primaryType,omitempty"`
	AdditionalTypes *[]string `json:"additionalTypes,omitempty"`
	Tags            *[]string `json:"tags,omitempty"`
	Files           []string  `json:"files,omitempty"`
	FundraisingGoal *float64  `json:"fundraisingGoal,omitempty" validate:"omitempty,gt=0"`
}

// Apply merges the patch into p.
func (patch ProjectPatch) Apply(p *Project) {
	setIf(&p.Title, patch.Title)
	setIf(&p.Description, patch.Description)
	setIf(&p.PrimaryType, patch.PrimaryType)
	if patch.AdditionalTypes != nil {
		p.AdditionalTypes = cloneStrings(*patch.AdditionalTypes)
	}
	if patch.Tags != nil {
		p.Tags = cloneStrings(*patch.Tags)
	}
	if len(patch.Files) > 0 {
		files := make([]string, 0, len(p.Files)+len(patch.Files))
		files = append(files, p.Files...)
		p.Files = append(files, patch.Files...)
	}
	if patch.FundraisingGoal != nil {
		goal := *patch.FundraisingGoal
		p.FundraisingGoal = &goal
	}
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	return append([]string(nil), in...)
}
