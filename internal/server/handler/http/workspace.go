package http

import (
	"context"

	"github.com/atinyakov/FlowDoc/internal/flow"
	"github.com/atinyakov/FlowDoc/internal/models"
	"github.com/atinyakov/FlowDoc/internal/service"
	"go.uber.org/zap"
)

// WorkspaceService defines the project, flow and node operations required
// by WorkspaceHandler. *service.Workspace implements it.
type WorkspaceService interface {
	CreateProject(ctx context.Context, name, description string) (models.Project, error)
	Projects() []models.Project
	Project(id string) (models.Project, error)
	DeleteProject(ctx context.Context, id string) error
	UpdateSettings(ctx context.Context, projectID string, s service.ProjectSettings) (models.Project, error)
	SelectProject(projectID string) (service.Selection, error)
	SelectFlow(projectID, flowID string) (service.Selection, error)
	Selection() service.Selection

	CreateSubFlow(ctx context.Context, projectID, parentFlowID, name string) (string, error)
	Flow(projectID, flowID string) (models.Flow, error)
	Path(projectID, flowID string) ([]models.Flow, error)
	Children(projectID, flowID string) ([]models.Flow, error)
	Roots(projectID string) ([]models.Flow, error)
	Tree(projectID string) ([]flow.TreeNode, error)
	UpdateFlow(ctx context.Context, projectID, flowID string, upd service.FlowUpdate) (models.Flow, error)
	MoveFlow(ctx context.Context, projectID, flowID, newParentID string) (models.Flow, error)
	DeleteFlow(ctx context.Context, projectID, flowID string) error

	AddNode(ctx context.Context, projectID, flowID string, spec flow.NodeSpec) (models.Node, error)
	UpdateNode(ctx context.Context, ref service.NodeRef, upd service.NodeUpdate) (models.Node, error)
	MoveNode(ctx context.Context, ref service.NodeRef, pos models.Position) (models.Node, error)
	SetNodeStatus(ctx context.Context, ref service.NodeRef, status string) (models.Node, error)
	SaveNodeDocument(ctx context.Context, ref service.NodeRef, title, content string) (models.DocumentVersion, error)
	AttachImage(ctx context.Context, ref service.NodeRef, dataURL string) (models.Image, string, error)
	DeleteNode(ctx context.Context, ref service.NodeRef) error

	AddMetric(ctx context.Context, ref service.NodeRef, in service.MetricInput) (models.Metric, error)
	AddImprovement(ctx context.Context, ref service.NodeRef, in service.ImprovementInput) (models.Improvement, error)
	AddChecklistItem(ctx context.Context, ref service.NodeRef, in service.ChecklistInput) (models.ChecklistItem, error)
	AddRisk(ctx context.Context, ref service.NodeRef, in service.RiskInput) (models.Risk, error)
	ToggleChecklistItem(ctx context.Context, ref service.NodeRef, itemID string) (models.ChecklistItem, error)
	UpdateImprovementStatus(ctx context.Context, ref service.NodeRef, improvementID, status string) (models.Improvement, error)
	RemoveMetric(ctx context.Context, ref service.NodeRef, id string) error
	RemoveImprovement(ctx context.Context, ref service.NodeRef, id string) error
	RemoveChecklistItem(ctx context.Context, ref service.NodeRef, id string) error
	RemoveRisk(ctx context.Context, ref service.NodeRef, id string) error

	Connect(ctx context.Context, projectID, flowID, sourceID, targetID string) (models.Connection, error)
	UpdateConnections(ctx context.Context, projectID, flowID string, conns []models.Connection) ([]models.Edge, error)
	Edges(projectID, flowID string) ([]models.Edge, error)

	CreateDocument(ctx context.Context, projectID, title string) (models.Document, error)
	SaveDocument(ctx context.Context, projectID, docID, title, content string) (models.DocumentVersion, error)
	DeleteDocument(ctx context.Context, projectID, docID string) error
	Documents(projectID string) ([]models.Document, error)

	AddTerm(ctx context.Context, projectID string, in service.TermInput) (models.GlossaryTerm, error)
	UpdateTerm(ctx context.Context, projectID, termID string, in service.TermInput) (models.GlossaryTerm, error)
	DeleteTerm(ctx context.Context, projectID, termID string) error
	SearchTerms(projectID, query string) ([]models.GlossaryTerm, error)
	MatchTerms(projectID, content string) ([]models.GlossaryTerm, error)
}

// WorkspaceHandler serves the project, flow, node and content endpoints.
type WorkspaceHandler struct {
	Workspace WorkspaceService
	Log       *zap.Logger
}
