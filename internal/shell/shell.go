// Package shell implements the interactive command loop of the flowdoc
// client. It drives the workspace in-process against the same storage the
// server uses.
package shell

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/atinyakov/FlowDoc/internal/flow"
	"github.com/atinyakov/FlowDoc/internal/models"
	"github.com/atinyakov/FlowDoc/internal/service"
)

// Accounts is the identity surface the shell needs.
type Accounts interface {
	Register(ctx context.Context, req service.RegisterRequest) (models.Profile, error)
	Login(ctx context.Context, email, password string) (models.Profile, error)
	Logout(ctx context.Context) error
	CurrentUser(ctx context.Context) (models.Profile, bool)
}

// Workspace is the project surface the shell needs.
type Workspace interface {
	CreateProject(ctx context.Context, name, description string) (models.Project, error)
	Projects() []models.Project
	SelectProject(projectID string) (service.Selection, error)
	SelectFlow(projectID, flowID string) (service.Selection, error)
	Selection() service.Selection
	Tree(projectID string) ([]flow.TreeNode, error)
	Flow(projectID, flowID string) (models.Flow, error)
	CreateSubFlow(ctx context.Context, projectID, parentFlowID, name string) (string, error)
	DeleteFlow(ctx context.Context, projectID, flowID string) error
	AddNode(ctx context.Context, projectID, flowID string, spec flow.NodeSpec) (models.Node, error)
	DeleteNode(ctx context.Context, ref service.NodeRef) error
	SetNodeStatus(ctx context.Context, ref service.NodeRef, status string) (models.Node, error)
	SaveNodeDocument(ctx context.Context, ref service.NodeRef, title, content string) (models.DocumentVersion, error)
	Connect(ctx context.Context, projectID, flowID, sourceID, targetID string) (models.Connection, error)
	Edges(projectID, flowID string) ([]models.Edge, error)
}

// Shell reads commands line by line from In and writes results to Out.
type Shell struct {
	Accounts  Accounts
	Workspace Workspace
	In        *bufio.Scanner
	Out       io.Writer
}

// New returns a shell over stdin and stdout.
func New(accounts Accounts, ws Workspace) *Shell {
	return &Shell{
		Accounts:  accounts,
		Workspace: ws,
		In:        bufio.NewScanner(os.Stdin),
		Out:       os.Stdout,
	}
}

const helpText = `Available commands:
  register <email> <password> <name>   create an account and sign in
  login <email> <password>             sign in
  logout | whoami
  projects                             list projects
  new-project <name>                   create and select a project
  use <projectID>                      select a project
  tree                                 print the flow tree of the selected project
  open <flowID>                        select a flow
  nodes                                list nodes of the selected flow
  add-node <title>                     add a node to the selected flow
  delete-node <nodeID>
  status <nodeID> <status>
  doc <nodeID>                         edit a node document
  connect <fromID> <toID> | edges
  subflow <name>                       add a sub-flow under the selected flow
  delete-flow <flowID>
  exit`

// Run executes commands until exit or end of input.
func (s *Shell) Run(ctx context.Context) {
	for {
		fmt.Fprint(s.Out, "flowdoc> ")
		if !s.In.Scan() {
			fmt.Fprintln(s.Out)
			return
		}
		args := strings.Fields(strings.TrimSpace(s.In.Text()))
		if len(args) == 0 {
			continue
		}
		if args[0] == "exit" {
			fmt.Fprintln(s.Out, "Bye")
			return
		}
		if err := s.Exec(ctx, args); err != nil {
			fmt.Fprintf(s.Out, "error: %v\n", err)
		}
	}
}

// Exec runs a single command.
func (s *Shell) Exec(ctx context.Context, args []string) error {
	cmd, rest := args[0], args[1:]
	switch cmd {
	case "help":
		fmt.Fprintln(s.Out, helpText)
		return nil
	case "register":
		if len(rest) < 3 {
			return usage("register <email> <password> <name>")
		}
		p, err := s.Accounts.Register(ctx, service.RegisterRequest{
			Email: rest[0], Password: rest[1], Name: strings.Join(rest[2:], " "),
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(s.Out, "Signed in as %s\n", p.Email)
		return nil
	case "login":
		if len(rest) != 2 {
			return usage("login <email> <password>")
		}
		p, err := s.Accounts.Login(ctx, rest[0], rest[1])
		if err != nil {
			return err
		}
		fmt.Fprintf(s.Out, "Signed in as %s\n", p.Email)
		return nil
	case "logout":
		return s.Accounts.Logout(ctx)
	case "whoami":
		p, ok := s.Accounts.CurrentUser(ctx)
		if !ok {
			fmt.Fprintln(s.Out, "Not signed in")
			return nil
		}
		fmt.Fprintf(s.Out, "%s <%s>\n", p.Name, p.Email)
		return nil
	}

	if _, ok := s.Accounts.CurrentUser(ctx); !ok {
		return service.ErrNotAuthenticated
	}
	return s.execWorkspace(ctx, cmd, rest)
}

func (s *Shell) execWorkspace(ctx context.Context, cmd string, rest []string) error {
	sel := s.Workspace.Selection()
	switch cmd {
	case "projects":
		for _, p := range s.Workspace.Projects() {
			marker := " "
			if p.ID == sel.ProjectID {
				marker = "*"
			}
			fmt.Fprintf(s.Out, "%s %s  %s  v%s\n", marker, p.ID, p.Name, p.Version)
		}
		return nil
	case "new-project":
		if len(rest) == 0 {
			return usage("new-project <name>")
		}
		p, err := s.Workspace.CreateProject(ctx, strings.Join(rest, " "), "")
		if err != nil {
			return err
		}
		fmt.Fprintf(s.Out, "Created %s\n", p.ID)
		return nil
	case "use":
		if len(rest) != 1 {
			return usage("use <projectID>")
		}
		_, err := s.Workspace.SelectProject(rest[0])
		return err
	}

	if sel.ProjectID == "" {
		return fmt.Errorf("no project selected")
	}
	ref := func(nodeID string) service.NodeRef {
		return service.NodeRef{ProjectID: sel.ProjectID, FlowID: sel.FlowID, NodeID: nodeID}
	}

	switch cmd {
	case "tree":
		tree, err := s.Workspace.Tree(sel.ProjectID)
		if err != nil {
			return err
		}
		printTree(s.Out, tree, sel.FlowID, 0)
	case "open":
		if len(rest) != 1 {
			return usage("open <flowID>")
		}
		next, err := s.Workspace.SelectFlow(sel.ProjectID, rest[0])
		if err != nil {
			return err
		}
		names := make([]string, len(next.Path))
		for i, f := range next.Path {
			names[i] = f.Name
		}
		fmt.Fprintln(s.Out, strings.Join(names, " > "))
	case "nodes":
		f, err := s.Workspace.Flow(sel.ProjectID, sel.FlowID)
		if err != nil {
			return err
		}
		for _, n := range f.Nodes {
			fmt.Fprintf(s.Out, "%s  %s  [%s]\n", n.ID, n.Data.Label, n.Data.Status)
		}
	case "add-node":
		n, err := s.Workspace.AddNode(ctx, sel.ProjectID, sel.FlowID, flow.NodeSpec{Title: strings.Join(rest, " ")})
		if err != nil {
			return err
		}
		fmt.Fprintf(s.Out, "Added %s\n", n.ID)
	case "delete-node":
		if len(rest) != 1 {
			return usage("delete-node <nodeID>")
		}
		return s.Workspace.DeleteNode(ctx, ref(rest[0]))
	case "status":
		if len(rest) != 2 {
			return usage("status <nodeID> <status>")
		}
		_, err := s.Workspace.SetNodeStatus(ctx, ref(rest[0]), rest[1])
		return err
	case "doc":
		if len(rest) != 1 {
			return usage("doc <nodeID>")
		}
		title, content, ok := PromptDocument(s.In, s.Out)
		if !ok {
			return nil
		}
		v, err := s.Workspace.SaveNodeDocument(ctx, ref(rest[0]), title, content)
		if err != nil {
			return err
		}
		fmt.Fprintf(s.Out, "Saved version %s\n", v.Version)
	case "connect":
		if len(rest) != 2 {
			return usage("connect <fromID> <toID>")
		}
		c, err := s.Workspace.Connect(ctx, sel.ProjectID, sel.FlowID, rest[0], rest[1])
		if err != nil {
			return err
		}
		fmt.Fprintf(s.Out, "Connected %s\n", c.ID)
	case "edges":
		edges, err := s.Workspace.Edges(sel.ProjectID, sel.FlowID)
		if err != nil {
			return err
		}
		b, _ := json.MarshalIndent(edges, "", "  ")
		fmt.Fprintln(s.Out, string(b))
	case "subflow":
		if len(rest) == 0 {
			return usage("subflow <name>")
		}
		id, err := s.Workspace.CreateSubFlow(ctx, sel.ProjectID, sel.FlowID, strings.Join(rest, " "))
		if err != nil {
			return err
		}
		fmt.Fprintf(s.Out, "Created %s\n", id)
	case "delete-flow":
		if len(rest) != 1 {
			return usage("delete-flow <flowID>")
		}
		return s.Workspace.DeleteFlow(ctx, sel.ProjectID, rest[0])
	default:
		fmt.Fprintln(s.Out, "Unknown command. Type 'help' for a list of commands.")
	}
	return nil
}

func printTree(w io.Writer, nodes []flow.TreeNode, current string, depth int) {
	for _, n := range nodes {
		marker := " "
		if n.ID == current {
			marker = "*"
		}
		fmt.Fprintf(w, "%s%s %s  %s\n", strings.Repeat("  ", depth), marker, n.ID, n.Name)
		printTree(w, n.Children, current, depth+1)
	}
}

func usage(s string) error {
	return fmt.Errorf("usage: %s", s)
}
