package session

import (
	"testing"

	"vibe-cli/internal/agent"
	"vibe-cli/internal/todo"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	id, err := Save(Record{
		Workdir:  "/tmp/project",
		Messages: []agent.Message{{Role: agent.RoleUser, Content: "hello"}},
		Todos:    []todo.Item{{Text: "ship it"}},
	})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if id == "" {
		t.Fatal("Save returned empty id")
	}

	rec, err := Load(id)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(rec.Messages) != 1 || rec.Messages[0].Content != "hello" {
		t.Fatalf("rec.Messages = %+v", rec.Messages)
	}
	if len(rec.Todos) != 1 || rec.Todos[0].Text != "ship it" {
		t.Fatalf("rec.Todos = %+v", rec.Todos)
	}
}

func TestLastPicksMostRecent(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	if _, err := Save(Record{ID: "older", Messages: []agent.Message{{Role: agent.RoleUser, Content: "a"}}}); err != nil {
		t.Fatalf("Save older: %v", err)
	}
	if _, err := Save(Record{ID: "newer", Messages: []agent.Message{{Role: agent.RoleUser, Content: "b"}}}); err != nil {
		t.Fatalf("Save newer: %v", err)
	}

	rec, err := Last()
	if err != nil {
		t.Fatalf("Last: %v", err)
	}
	if rec.ID != "newer" {
		t.Fatalf("Last().ID = %q, want newer", rec.ID)
	}
}

func TestListFiltersByWorkdir(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	if _, err := Save(Record{ID: "here", Workdir: "/work/a"}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := Save(Record{ID: "elsewhere", Workdir: "/work/b"}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	records, err := List(false, "/work/a")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(records) != 1 || records[0].ID != "here" {
		t.Fatalf("List = %+v, want only the /work/a session", records)
	}

	all, err := List(true, "")
	if err != nil {
		t.Fatalf("List all: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("List all = %d records, want 2", len(all))
	}
}

func TestListIDsMissingDir(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	ids, err := ListIDs()
	if err != nil {
		t.Fatalf("ListIDs: %v", err)
	}
	if len(ids) != 0 {
		t.Fatalf("ids = %v, want none", ids)
	}
}
