// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"strings"
	"testing"
)

func allIds() []Id {
	return []Id{
		ConfigLoadFailedId,
		ParamsFileInvalidId,
		MissingParameterId,
		InvalidParameterId,
		ExecutionTokenMissingId,
		ProvisioningFailedId,
		WorkspaceFailedId,
		PipelineNotFoundId,
		PipelineFailedId,
		PermissionDeniedId,
		LogUploadFailedId,
	}
}

func TestId_Constants(t *testing.T) {
	seen := make(map[Id]bool)
	for _, id := range allIds() {
		if seen[id] {
			t.Errorf("duplicate ID: %d", id)
		}
		seen[id] = true
	}

	// IDs start at 1 so the zero Id means "no issue".
	if ConfigLoadFailedId != 1 {
		t.Errorf("ConfigLoadFailedId = %d, want 1", ConfigLoadFailedId)
	}
}

func TestGet(t *testing.T) {
	tests := []struct {
		id       Id
		wantNil  bool
		contains string
	}{
		{ConfigLoadFailedId, false, "Failed to load configuration"},
		{ParamsFileInvalidId, false, "Invalid params file"},
		{MissingParameterId, false, "Mandatory parameter missing"},
		{InvalidParameterId, false, "Invalid parameter value"},
		{ExecutionTokenMissingId, false, "FLYTE_INTERNAL_EXECUTION_ID"},
		{ProvisioningFailedId, false, "Storage provisioning failed"},
		{WorkspaceFailedId, false, "Workspace could not be prepared"},
		{PipelineNotFoundId, false, "Pipeline runtime not found"},
		{PipelineFailedId, false, "Pipeline failed"},
		{PermissionDeniedId, false, "Permission denied"},
		{LogUploadFailedId, false, "Log upload failed"},
		{Id(9999), true, "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.contains, func(t *testing.T) {
			issue := Get(tt.id)

			if tt.wantNil {
				if issue != nil {
					t.Errorf("Get(%d) should return nil", tt.id)
				}
				return
			}

			if issue == nil {
				t.Fatalf("Get(%d) returned nil", tt.id)
			}
			if issue.Id() != tt.id {
				t.Errorf("issue.Id() = %d, want %d", issue.Id(), tt.id)
			}
			if !strings.Contains(string(issue.MarkdownMsg()), tt.contains) {
				t.Errorf("Get(%d).MarkdownMsg() should contain %q", tt.id, tt.contains)
			}
		})
	}
}

func TestValues(t *testing.T) {
	issues := Values()

	if len(issues) != len(allIds()) {
		t.Errorf("Values() returned %d issues, want %d", len(issues), len(allIds()))
	}
	for _, issue := range issues {
		if issue.Id() == 0 {
			t.Error("found issue with ID 0")
		}
		if issue.MarkdownMsg() == "" {
			t.Errorf("Issue %d has empty MarkdownMsg", issue.Id())
		}
	}
}

func TestIssue_LinksAreCloned(t *testing.T) {
	issue := Get(PipelineFailedId)
	links := issue.ExtLinks()
	if len(links) == 0 {
		t.Fatal("PipelineFailedId has no external links")
	}

	original := links[0]
	links[0] = "modified"
	if issue.ExtLinks()[0] != original {
		t.Error("ExtLinks() should return a clone")
	}
	if issue.DocLinks() != nil {
		t.Errorf("DocLinks() = %v, want nil", issue.DocLinks())
	}
}

func TestIssue_Render(t *testing.T) {
	originalRender := render
	defer func() { render = originalRender }()

	render = func(in string, stylePath string) (string, error) {
		return in, nil
	}

	tests := []struct {
		name        string
		issue       *Issue
		wantSeeAlso bool
	}{
		{
			name: "with links",
			issue: &Issue{
				id:       Id(9999),
				mdMsg:    "# Test Issue\n\nThis is a test.",
				docLinks: []HttpLink{"https://docs.example.com"},
				extLinks: []HttpLink{"https://external.example.com"},
			},
			wantSeeAlso: true,
		},
		{
			name: "without links",
			issue: &Issue{
				id:    Id(9998),
				mdMsg: "# Test Issue\n\nNo links here.",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rendered, err := tt.issue.Render("")
			if err != nil {
				t.Fatalf("Render() returned error: %v", err)
			}
			if got := strings.Contains(rendered, "See also"); got != tt.wantSeeAlso {
				t.Errorf("Render() contains 'See also' = %v, want %v", got, tt.wantSeeAlso)
			}
			if tt.wantSeeAlso && !strings.Contains(rendered, "https://external.example.com") {
				t.Error("Render() output is missing the external link")
			}
		})
	}
}

func TestAllIssuesAreRenderable(t *testing.T) {
	for _, issue := range Values() {
		rendered, err := issue.Render("dark")
		if err != nil {
			t.Errorf("Issue %d failed to render: %v", issue.Id(), err)
		}
		if rendered == "" {
			t.Errorf("Issue %d rendered to empty string", issue.Id())
		}
	}
}
