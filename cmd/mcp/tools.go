package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/justsurfingit/placement-portal/internal/branch"
	"github.com/justsurfingit/placement-portal/internal/services"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

type tools struct {
	jobs *services.JobService
}

func (t *tools) register(s *server.MCPServer) {
	normalizeTool := mcp.NewTool("normalize_branches",
		mcp.WithDescription("Map free-text branch names (e.g. 'Computer Science', 'B.Tech Mechanical') to canonical branch codes"),
	)
	normalizeTool.InputSchema = mcp.ToolInputSchema{
		Type: "object",
		Properties: map[string]interface{}{
			"branches": map[string]interface{}{"type": "array", "items": map[string]interface{}{"type": "string"}, "description": "Branch names to normalize"},
		},
		Required: []string{"branches"},
	}
	s.AddTool(normalizeTool, t.normalizeBranches)

	matchTool := mcp.NewTool("match_students",
		mcp.WithDescription("List the students eligible for the given criteria. Criteria with no rules match nobody."),
	)
	matchTool.InputSchema = mcp.ToolInputSchema{
		Type: "object",
		Properties: map[string]interface{}{
			"cgpa":     map[string]interface{}{"type": "number", "description": "Minimum CGPA (optional)"},
			"branches": map[string]interface{}{"type": "array", "items": map[string]interface{}{"type": "string"}, "description": "Allowed branches; empty means all (optional)"},
			"backlogs": map[string]interface{}{"type": "integer", "description": "Maximum active backlogs (optional)"},
			"year_gap": map[string]interface{}{"type": "integer", "description": "Maximum year gap (optional)"},
		},
	}
	s.AddTool(matchTool, t.matchStudents)

	jobsTool := mcp.NewTool("eligible_jobs",
		mcp.WithDescription("List the jobs a student is eligible for, newest first"),
	)
	jobsTool.InputSchema = mcp.ToolInputSchema{
		Type: "object",
		Properties: map[string]interface{}{
			"email": map[string]interface{}{"type": "string", "description": "Student email"},
		},
		Required: []string{"email"},
	}
	s.AddTool(jobsTool, t.eligibleJobs)
}

func (t *tools) normalizeBranches(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return mcp.NewToolResultError("invalid arguments format"), nil
	}
	raw, ok := args["branches"].([]interface{})
	if !ok {
		return mcp.NewToolResultError("branches must be a list of strings"), nil
	}

	var summary strings.Builder
	for _, v := range raw {
		name, _ := v.(string)
		if code, ok := branch.Normalize(name); ok {
			fmt.Fprintf(&summary, "%s -> %s (%s)\n", name, code, branch.DisplayName(code))
		} else {
			fmt.Fprintf(&summary, "%s -> (unrecognized)\n", name)
		}
	}
	return mcp.NewToolResultText(summary.String()), nil
}

func (t *tools) matchStudents(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return mcp.NewToolResultError("invalid arguments format"), nil
	}
	// Arguments use the same keys as the extractor output, so reuse its validation.
	body, err := json.Marshal(args)
	if err != nil {
		return mcp.NewToolResultError("invalid arguments format"), nil
	}
	ext, err := services.ParseCriteriaReply(string(body))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	students, err := t.jobs.StudentsMatching(ctx, ext.Criteria)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to query students: %v", err)), nil
	}
	if len(students) == 0 {
		return mcp.NewToolResultText("No eligible students. " + ext.Diagnostic), nil
	}

	var summary strings.Builder
	fmt.Fprintf(&summary, "%d eligible students:\n", len(students))
	for _, s := range students {
		fmt.Fprintf(&summary, "- %s (%s, %s, CGPA %.2f)\n", s.Email, s.FullName, s.Branch, s.CGPA)
	}
	return mcp.NewToolResultText(summary.String()), nil
}

func (t *tools) eligibleJobs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return mcp.NewToolResultError("invalid arguments format"), nil
	}
	email, _ := args["email"].(string)
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return mcp.NewToolResultError("email is required"), nil
	}

	jobs, err := t.jobs.JobsForStudent(ctx, email)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to query jobs: %v", err)), nil
	}
	if len(jobs) == 0 {
		return mcp.NewToolResultText("No eligible jobs for " + email), nil
	}

	var summary strings.Builder
	for _, j := range jobs {
		fmt.Fprintf(&summary, "#%d %s", j.ID, j.CompanyName)
		if j.CTC != nil {
			fmt.Fprintf(&summary, " | CTC %s", *j.CTC)
		}
		if j.LastDate != nil {
			fmt.Fprintf(&summary, " | apply by %s", *j.LastDate)
		}
		summary.WriteString("\n")
	}
	return mcp.NewToolResultText(summary.String()), nil
}
