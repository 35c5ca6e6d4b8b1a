package entities

import (
	"encoding/json"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeRecord_PreservesNumberLiterals(t *testing.T) {
	raw := []byte(`{"id":7,"budget":12345678901234567890,"progress":50.0,"ratio":1e3}`)

	rec, err := DecodeRecord(raw)
	require.NoError(t, err)

	assert.Equal(t, json.Number("7"), rec["id"])
	assert.Equal(t, "7", rec.ID())

	out, err := json.Marshal(rec)
	require.NoError(t, err)
	assert.JSONEq(t, string(raw), string(out))
	assert.Contains(t, string(out), "12345678901234567890")
	assert.Contains(t, string(out), "50.0")
}

func TestDecodeRecord_RejectsNonObjects(t *testing.T) {
	cases := map[string]string{
		"array":    `[{"id":1}]`,
		"null":     `null`,
		"string":   `"task"`,
		"number":   `42`,
		"broken":   `{"id":`,
		"trailing": `{"id":1} {"id":2}`,
		"empty":    ``,
	}

	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeRecord([]byte(raw))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidRecord))
		})
	}
}

func TestDecodeRecord_AllowsSurroundingWhitespace(t *testing.T) {
	rec, err := DecodeRecord([]byte("  {\"id\":\"a\"}\n"))
	require.NoError(t, err)
	assert.Equal(t, "a", rec.ID())
}

func TestIDString(t *testing.T) {
	assert.Equal(t, "", IDString(nil))
	assert.Equal(t, "abc", IDString("abc"))
	assert.Equal(t, "12", IDString(json.Number("12")))
	assert.Equal(t, "true", IDString(true))
	assert.Equal(t, "false", IDString(false))
	assert.Equal(t, "3", IDString(3))
}

func TestRecord_MergeReturnsCopy(t *testing.T) {
	base := Record{"id": "p1", "title": "Portal", "progress": json.Number("0")}

	merged := base.Merge(Record{"progress": json.Number("50"), "status": "en_progreso"})

	assert.Equal(t, Record{
		"id":       "p1",
		"title":    "Portal",
		"progress": json.Number("50"),
		"status":   "en_progreso",
	}, merged)
	assert.Equal(t, json.Number("0"), base["progress"])
	assert.NotContains(t, base, "status")
}

func TestSession_IsLive(t *testing.T) {
	session := Session{IsActive: true, ExpiresAt: time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC)}

	assert.True(t, session.IsLive(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)))
	assert.False(t, session.IsLive(time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)))

	session.IsActive = false
	assert.False(t, session.IsLive(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)))
}

func TestNewRecord_FromEntity(t *testing.T) {
	rec, err := NewRecord(Task{ID: "t1", Title: "Write", Status: TaskStatusPending, Progress: 10})
	require.NoError(t, err)

	assert.Equal(t, "t1", rec.ID())
	assert.Equal(t, "pendiente", rec["status"])
	assert.Equal(t, json.Number("10"), rec["progress"])
	assert.Nil(t, rec["completedAt"])
}

func TestParseDocument_FillsDefaultCollections(t *testing.T) {
	doc, extra, err := ParseDocument([]byte(`{"tasks":[{"id":"t1"}],"notes":null}`))
	require.NoError(t, err)

	for _, name := range DefaultCollections {
		assert.NotNil(t, doc[name], name)
	}
	assert.Len(t, doc[CollectionTasks], 1)
	assert.Equal(t, []Record{}, doc["notes"])
	assert.Empty(t, extra)
}

func TestParseDocument_KeepsNonCollectionKeys(t *testing.T) {
	raw := []byte(`{
		"users": [{"id": "u1"}],
		"meta": {"version": 1.0},
		"tags": ["a", "b"],
		"mixed": [{"id": 1}, 2],
		"projects": "broken"
	}`)

	doc, extra, err := ParseDocument(raw)
	require.NoError(t, err)

	assert.Len(t, doc[CollectionUsers], 1)
	assert.NotContains(t, doc, "meta")
	assert.NotContains(t, doc, CollectionProjects)
	assert.Equal(t, []string{"meta", "mixed", "projects", "tags"}, sortedKeys(extra))
	assert.JSONEq(t, `{"version": 1.0}`, string(extra["meta"]))

	out, err := EncodeDocument(doc, extra)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"version": 1.0`)

	again, extraAgain, err := ParseDocument(out)
	require.NoError(t, err)
	assert.Equal(t, doc, again)
	assert.Len(t, extraAgain, 4)
	assert.JSONEq(t, `"broken"`, string(extraAgain["projects"]))
}

func TestEncodeDocument_CollectionShadowsExtra(t *testing.T) {
	doc := Document{"tags": {{"id": "t1"}}}
	extra := Extra{"tags": json.RawMessage(`["a"]`), "meta": json.RawMessage(`{}`)}

	out, err := EncodeDocument(doc, extra)
	require.NoError(t, err)
	assert.JSONEq(t, `{"tags":[{"id":"t1"}],"meta":{}}`, string(out))
}

func sortedKeys(extra Extra) []string {
	keys := make([]string, 0, len(extra))
	for k := range extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func TestParseDocument_RejectsNonObject(t *testing.T) {
	for _, raw := range []string{`[]`, `null`, `not json`, ``, `{"users":[]} trailing`} {
		_, _, err := ParseDocument([]byte(raw))
		assert.Error(t, err, raw)
	}
}

func TestDocument_EncodeIsIndented(t *testing.T) {
	doc := NewDocument()
	doc[CollectionUsers] = append(doc[CollectionUsers], Record{"id": "u1"})

	raw, err := doc.Encode()
	require.NoError(t, err)

	assert.Contains(t, string(raw), "\n  \"users\": [\n    {\n      \"id\": \"u1\"")
	assert.Contains(t, string(raw), `"sessions": []`)
}

func TestDocument_NamesAndIndexOf(t *testing.T) {
	doc := Document{
		"tasks": {
			{"id": "a"},
			{"id": json.Number("2")},
			{"id": "a", "dup": true},
		},
		"users": {},
	}

	assert.Equal(t, []string{"tasks", "users"}, doc.Names())
	assert.Equal(t, 0, doc.IndexOf("tasks", "a"))
	assert.Equal(t, 1, doc.IndexOf("tasks", "2"))
	assert.Equal(t, -1, doc.IndexOf("tasks", "missing"))
	assert.Equal(t, -1, doc.IndexOf("projects", "a"))
}

func TestTaskStatus_IsTerminal(t *testing.T) {
	assert.True(t, TaskStatusCompleted.IsTerminal())
	assert.True(t, TaskStatusCancelled.IsTerminal())
	assert.False(t, TaskStatusPending.IsTerminal())
	assert.False(t, TaskStatusInReview.IsTerminal())
}
