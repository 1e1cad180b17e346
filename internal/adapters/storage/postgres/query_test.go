package postgres

import (
	"testing"

	"mediation-cms/internal/access"

	"github.com/google/go-cmp/cmp"
)

func TestQueryScope(t *testing.T) {
	mediator := access.Requester{UserID: "med-1", Role: access.RoleMediator}
	filter, denied := access.Cases.Decide(access.OpRead, mediator).Scope()
	if denied || filter == nil {
		t.Fatalf("expected filter decision, got denied=%v filter=%v", denied, filter)
	}

	var qb query
	qb.scope(filter, caseColumns)
	qb.and("status = " + qb.arg("open"))

	want := " WHERE ($1 = ANY(mediators) OR $2 = ANY(participants)) AND status = $3"
	if got := qb.whereSQL(); got != want {
		t.Fatalf("where mismatch:\n got: %s\nwant: %s", got, want)
	}
	if diff := cmp.Diff([]any{"med-1", "med-1", "open"}, qb.args); diff != "" {
		t.Fatalf("args mismatch (-want +got):\n%s", diff)
	}
}

func TestQueryScope_PublishedOrAuthor(t *testing.T) {
	filter, _ := access.Posts.Decide(access.OpRead, access.Anonymous()).Scope()

	var qb query
	qb.scope(filter, postColumns)
	if got, want := qb.whereSQL(), " WHERE (status = $1)"; got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestQueryScope_UnknownFieldNeverWidens(t *testing.T) {
	f := access.AnyOf(access.Where("owners", access.OpContains, "u-1"))

	var qb query
	qb.scope(&f, submissionColumns)
	if got, want := qb.whereSQL(), " WHERE (FALSE)"; got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestQueryLimit(t *testing.T) {
	var qb query
	if got := qb.limit(0, 50, 200); got != " LIMIT $1" {
		t.Fatalf("unexpected %q", got)
	}
	_ = qb.limit(1000, 50, 200)
	if diff := cmp.Diff([]any{50, 200}, qb.args); diff != "" {
		t.Fatalf("limits (-want +got):\n%s", diff)
	}
}
