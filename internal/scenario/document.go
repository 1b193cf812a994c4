package scenario

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/signalsfoundry/mission-designer/core"
)

// Format selects the document encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

//go:embed globalwatch.yaml
var globalWatch []byte

// ErrUnknownFormat is returned for file extensions other than .yaml, .yml
// and .json.
var ErrUnknownFormat = errors.New("unknown scenario format")

// MissionHeader carries the descriptive fields of a mission.
type MissionHeader struct {
	ID                 string `json:"id" yaml:"id"`
	Name               string `json:"name" yaml:"name"`
	Description        string `json:"description" yaml:"description"`
	MissionType        string `json:"mission_type,omitempty" yaml:"mission_type,omitempty"`
	BaselineSolutionID string `json:"baseline_solution_id,omitempty" yaml:"baseline_solution_id,omitempty"`
	SelectedSolutionID string `json:"selected_solution_id,omitempty" yaml:"selected_solution_id,omitempty"`
}

// Iteration asks Build to evaluate a solution and append the result to the
// design history.
type Iteration struct {
	SolutionID          string `json:"solution_id" yaml:"solution_id"`
	ChangesFromPrevious string `json:"changes_from_previous,omitempty" yaml:"changes_from_previous,omitempty"`
	IterationNotes      string `json:"iteration_notes,omitempty" yaml:"iteration_notes,omitempty"`
}

// Document is a complete mission scenario.
type Document struct {
	Mission      MissionHeader `json:"mission" yaml:"mission"`
	Objectives   []Objective   `json:"objectives,omitempty" yaml:"objectives,omitempty"`
	Requirements []Requirement `json:"requirements,omitempty" yaml:"requirements,omitempty"`
	Constraints  []Constraint  `json:"constraints,omitempty" yaml:"constraints,omitempty"`
	Solutions    []Solution    `json:"solutions,omitempty" yaml:"solutions,omitempty"`
	Iterations   []Iteration   `json:"iterations,omitempty" yaml:"iterations,omitempty"`
}

// FormatFromPath picks the format from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownFormat, path)
	}
}

// Decode reads a document. Unknown fields are rejected in both formats.
func Decode(r io.Reader, format Format) (*Document, error) {
	var doc Document
	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		if err := dec.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode yaml scenario: %w", err)
		}
	case FormatJSON:
		dec := json.NewDecoder(r)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode json scenario: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	if doc.Mission.ID == "" {
		return nil, fmt.Errorf("%w: mission id is required", core.ErrInvalidRecord)
	}
	return &doc, nil
}

// LoadFile reads and decodes the document at path.
func LoadFile(path string) (*Document, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}
	return Decode(bytes.NewReader(data), format)
}

// GlobalWatch decodes the bundled three-solution land monitoring scenario.
func GlobalWatch() (*Document, error) {
	return Decode(bytes.NewReader(globalWatch), FormatYAML)
}

// Encode writes doc in the given format.
func Encode(w io.Writer, doc *Document, format Format) error {
	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return err
		}
		return enc.Close()
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// Build constructs the mission, registers every entity in document order,
// runs the listed iterations through ev and applies the baseline and
// selected solution ids last.
func (d *Document) Build(ctx context.Context, ev *core.Evaluator, opts ...core.MissionOption) (*core.Mission, error) {
	opts = append([]core.MissionOption{core.WithMissionType(d.Mission.MissionType)}, opts...)
	m, err := core.NewMission(d.Mission.ID, d.Mission.Name, d.Mission.Description, opts...)
	if err != nil {
		return nil, err
	}
	for _, o := range d.Objectives {
		obj, err := o.Build()
		if err != nil {
			return nil, err
		}
		if err := m.AddObjective(obj); err != nil {
			return nil, err
		}
	}
	for _, r := range d.Requirements {
		req, err := r.Build()
		if err != nil {
			return nil, err
		}
		if err := m.AddRequirement(req); err != nil {
			return nil, err
		}
	}
	for _, c := range d.Constraints {
		con, err := c.Build()
		if err != nil {
			return nil, err
		}
		if err := m.AddConstraint(con); err != nil {
			return nil, err
		}
	}
	for _, s := range d.Solutions {
		sol, err := s.Build()
		if err != nil {
			return nil, err
		}
		if _, err := m.AddDesignSolution(sol); err != nil {
			return nil, err
		}
	}
	if len(d.Iterations) > 0 && ev == nil {
		ev = core.NewEvaluator()
	}
	for _, it := range d.Iterations {
		res, err := ev.Evaluate(ctx, m, it.SolutionID)
		if err != nil {
			return nil, fmt.Errorf("iteration for %s: %w", it.SolutionID, err)
		}
		m.AddDesignIteration(m.DesignSolution(it.SolutionID), res.Evaluation, it.ChangesFromPrevious, it.IterationNotes)
	}
	if id := d.Mission.BaselineSolutionID; id != "" && !m.SetBaselineSolution(id) {
		return nil, fmt.Errorf("%w: baseline %s", core.ErrSolutionNotFound, id)
	}
	if id := d.Mission.SelectedSolutionID; id != "" && !m.SetSelectedSolution(id) {
		return nil, fmt.Errorf("%w: selected %s", core.ErrSolutionNotFound, id)
	}
	return m, nil
}

// FromMission exports the current contents of m. Iteration history is not
// exported since replaying it would re-run evaluations.
func FromMission(m *core.Mission) *Document {
	doc := &Document{Mission: MissionHeader{
		ID:                 m.ID,
		Name:               m.Name,
		Description:        m.Description,
		MissionType:        m.MissionType,
		BaselineSolutionID: m.BaselineSolutionID,
		SelectedSolutionID: m.SelectedSolutionID,
	}}
	for _, o := range m.Objectives() {
		doc.Objectives = append(doc.Objectives, FromObjective(o))
	}
	for _, r := range m.Requirements() {
		doc.Requirements = append(doc.Requirements, FromRequirement(r))
	}
	for _, c := range m.Constraints() {
		doc.Constraints = append(doc.Constraints, FromConstraint(c))
	}
	for _, s := range m.DesignSolutions() {
		doc.Solutions = append(doc.Solutions, FromSolution(s))
	}
	return doc
}
