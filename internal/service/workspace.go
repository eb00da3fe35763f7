package service

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/atinyakov/FlowDoc/internal/flow"
	"github.com/atinyakov/FlowDoc/internal/models"
	"github.com/atinyakov/FlowDoc/internal/util"
	"go.uber.org/zap"
)

// ProjectRepository loads and saves the whole project collection.
type ProjectRepository interface {
	// Load returns the stored projects; empty when missing or unreadable.
	Load(ctx context.Context) []models.Project
	// Save rewrites the collection and reports success.
	Save(ctx context.Context, projects []models.Project) bool
}

// DefaultStatuses is the status set a new project starts with.
func DefaultStatuses() []models.Status {
	return []models.Status{
		{ID: "draft", Name: "Draft", Color: "#95a5a6"},
		{ID: "review", Name: "In review", Color: "#f39c12"},
		{ID: "published", Name: "Published", Color: "#27ae60"},
	}
}

// Selection is the current project, flow and breadcrumb path.
type Selection struct {
	ProjectID string        `json:"projectId"`
	FlowID    string        `json:"flowId"`
	Path      []models.Flow `json:"path"`
}

// ProjectSettings carries the editable project-level settings.
type ProjectSettings struct {
	Name        *string         `json:"name,omitempty"`
	Description *string         `json:"description,omitempty"`
	Statuses    []models.Status `json:"statuses"`
}

// Workspace is the application state: the loaded projects plus the
// current selection. Every mutation is serialised by mu and rewrites the
// whole collection through the repository.
type Workspace struct {
	mu       sync.Mutex
	repo     ProjectRepository
	log      *zap.Logger
	now      func() time.Time
	projects []models.Project

	currentProject string
	currentFlow    string
}

// NewWorkspace loads the persisted projects and selects the first one.
func NewWorkspace(ctx context.Context, repo ProjectRepository, log *zap.Logger) *Workspace {
	if log == nil {
		log = zap.NewNop()
	}
	w := &Workspace{
		repo:     repo,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
		projects: repo.Load(ctx),
	}
	if len(w.projects) > 0 {
		w.selectFirstFlow(&w.projects[0])
	}
	log.Info("workspace loaded", zap.Int("projects", len(w.projects)))
	return w
}

// CreateProject adds a project with the default statuses and a root flow,
// and selects it.
func (w *Workspace) CreateProject(ctx context.Context, name, description string) (models.Project, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Project{}, opErr("create project", "", invalid("name is required"))
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	now := w.now()
	root := flow.NewRootFlow(flow.RootFlowName)
	p := models.Project{
		ID:          util.NewID("project"),
		Name:        name,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
		Version:     flow.InitialVersion,
		Statuses:    DefaultStatuses(),
		Flows:       []models.Flow{root},
	}
	w.projects = append(w.projects, p)
	w.currentProject = p.ID
	w.currentFlow = root.ID
	w.persist(ctx)
	w.log.Info("project created", zap.String("project_id", p.ID))
	return clone(p), nil
}

// Projects returns a snapshot of every project.
func (w *Workspace) Projects() []models.Project {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]models.Project, len(w.projects))
	for i, p := range w.projects {
		out[i] = clone(p)
	}
	return out
}

// Project returns a snapshot of one project.
func (w *Workspace) Project(id string) (models.Project, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	i := w.projectIndex(id)
	if i < 0 {
		return models.Project{}, opErr("get project", id, ErrProjectNotFound)
	}
	return clone(w.projects[i]), nil
}

// DeleteProject removes a project. If it was selected, the first remaining
// project becomes current.
func (w *Workspace) DeleteProject(ctx context.Context, id string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	i := w.projectIndex(id)
	if i < 0 {
		return opErr("delete project", id, ErrProjectNotFound)
	}
	w.projects = append(w.projects[:i:i], w.projects[i+1:]...)
	if w.currentProject == id {
		w.currentProject, w.currentFlow = "", ""
		if len(w.projects) > 0 {
			w.selectFirstFlow(&w.projects[0])
		}
	}
	w.persist(ctx)
	w.log.Info("project deleted", zap.String("project_id", id))
	return nil
}

// UpdateSettings replaces the project's statuses and optionally its name and
// description. An empty status list is rejected.
func (w *Workspace) UpdateSettings(ctx context.Context, projectID string, s ProjectSettings) (models.Project, error) {
	if len(s.Statuses) == 0 {
		return models.Project{}, opErr("update settings", projectID, ErrStatusRequired)
	}
	for _, st := range s.Statuses {
		if strings.TrimSpace(st.ID) == "" || strings.TrimSpace(st.Name) == "" {
			return models.Project{}, opErr("update settings", projectID, invalid("status id and name are required"))
		}
	}
	return w.updateProject(ctx, "update settings", projectID, func(p *models.Project) error {
		if s.Name != nil {
			name := strings.TrimSpace(*s.Name)
			if name == "" {
				return invalid("name is required")
			}
			p.Name = name
		}
		if s.Description != nil {
			p.Description = *s.Description
		}
		p.Statuses = append([]models.Status(nil), s.Statuses...)
		return nil
	})
}

// SelectProject makes projectID current and selects its first flow.
func (w *Workspace) SelectProject(projectID string) (Selection, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	i := w.projectIndex(projectID)
	if i < 0 {
		return Selection{}, opErr("select project", projectID, ErrProjectNotFound)
	}
	w.selectFirstFlow(&w.projects[i])
	return w.selection(), nil
}

// SelectFlow makes flowID current and returns the breadcrumb path to it.
func (w *Workspace) SelectFlow(projectID, flowID string) (Selection, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	i := w.projectIndex(projectID)
	if i < 0 {
		return Selection{}, opErr("select flow", projectID, ErrProjectNotFound)
	}
	if w.projects[i].FindFlow(flowID) == nil {
		return Selection{}, opErr("select flow", flowID, ErrFlowNotFound)
	}
	w.currentProject = projectID
	w.currentFlow = flowID
	return w.selection(), nil
}

// Selection returns the current selection. Both ids are empty when no
// project exists.
func (w *Workspace) Selection() Selection {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.selection()
}

func (w *Workspace) selection() Selection {
	sel := Selection{ProjectID: w.currentProject, FlowID: w.currentFlow, Path: []models.Flow{}}
	i := w.projectIndex(w.currentProject)
	if i < 0 {
		return sel
	}
	if f := w.projects[i].FindFlow(w.currentFlow); f != nil {
		for _, step := range flow.BuildPath(w.projects[i].Flows, *f) {
			sel.Path = append(sel.Path, clone(step))
		}
	}
	return sel
}

func (w *Workspace) selectFirstFlow(p *models.Project) {
	w.currentProject = p.ID
	w.currentFlow = ""
	if len(p.Flows) > 0 {
		w.currentFlow = p.Flows[0].ID
	}
}

// updateProject applies fn to a working copy of the project. On success the
// copy is stamped, replaces the stored project and the collection is saved;
// on error nothing changes.
func (w *Workspace) updateProject(ctx context.Context, op, projectID string, fn func(p *models.Project) error) (models.Project, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.updateProjectLocked(ctx, op, projectID, fn)
}

func (w *Workspace) updateProjectLocked(ctx context.Context, op, projectID string, fn func(p *models.Project) error) (models.Project, error) {
	i := w.projectIndex(projectID)
	if i < 0 {
		return models.Project{}, opErr(op, projectID, ErrProjectNotFound)
	}
	work := clone(w.projects[i])
	if err := fn(&work); err != nil {
		return models.Project{}, opErr(op, projectID, err)
	}
	work.UpdatedAt = w.now()
	w.projects[i] = work
	w.persist(ctx)
	return clone(work), nil
}

// persist writes the collection. A failed write keeps the in-memory state.
func (w *Workspace) persist(ctx context.Context) {
	if !w.repo.Save(ctx, w.projects) {
		w.log.Warn("projects kept in memory only", zap.Int("count", len(w.projects)))
	}
}

func (w *Workspace) projectIndex(id string) int {
	if id == "" {
		return -1
	}
	for i := range w.projects {
		if w.projects[i].ID == id {
			return i
		}
	}
	return -1
}

// clone deep-copies v through its JSON form so snapshots never share
// slices with stored state.
func clone[T any](v T) T {
	var out T
	b, err := json.Marshal(v)
	if err != nil {
		return v
	}
	if err := json.Unmarshal(b, &out); err != nil {
		return v
	}
	return out
}
