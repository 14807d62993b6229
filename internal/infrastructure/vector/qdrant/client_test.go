package qdrant

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/avolkov/examgen/internal/core/domain"
)

func TestUpsertChunksCreatesCollectionThenWrites(t *testing.T) {
	var paths []string
	var upsertBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.Method+" "+r.URL.Path)
		if r.URL.Path == "/collections/chunks/points" {
			_ = json.NewDecoder(r.Body).Decode(&upsertBody)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"status": "ok"})
	}))
	defer server.Close()

	client := New(server.URL, "chunks")
	err := client.UpsertChunks(context.Background(), []domain.Chunk{
		{
			ID:        "11111111-1111-1111-1111-111111111111",
			Text:      "chunk text",
			Embedding: []float32{0.1, 0.2},
			AutoTags:  domain.Metadata{domain.MetaClassID: "cs101", domain.MetaTopic: "hashing"},
		},
	})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}

	if len(paths) != 2 || paths[0] != "PUT /collections/chunks" || paths[1] != "PUT /collections/chunks/points" {
		t.Fatalf("unexpected request sequence: %v", paths)
	}

	points := upsertBody["points"].([]any)
	if len(points) != 1 {
		t.Fatalf("expected 1 point, got %d", len(points))
	}
	payload := points[0].(map[string]any)["payload"].(map[string]any)
	if payload["text"] != "chunk text" || payload["class_id"] != "cs101" {
		t.Fatalf("unexpected payload: %v", payload)
	}
	if _, ok := payload["auto_tags"].(map[string]any); !ok {
		t.Fatalf("expected auto_tags map, got %T", payload["auto_tags"])
	}
}

func TestUpsertToleratesExistingCollection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/collections/chunks" {
			w.WriteHeader(http.StatusConflict)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"status": "ok"})
	}))
	defer server.Close()

	client := New(server.URL, "chunks")
	err := client.UpsertChunks(context.Background(), []domain.Chunk{
		{ID: "id-1", Text: "t", Embedding: []float32{0.1}},
	})
	if err != nil {
		t.Fatalf("409 on ensure must be tolerated: %v", err)
	}
}

func TestQueryConvertsScoreToDistance(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/collections/chunks/points/search" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"result": []map[string]any{
				{
					"id":    "a",
					"score": 0.75,
					"payload": map[string]any{
						"text":           "nearest chunk",
						"auto_tags":      map[string]any{"topic": "hashing"},
						"user_overrides": map[string]any{"exam_region": "post"},
					},
				},
				{"id": "b", "score": 1.5, "payload": map[string]any{"text": "overscored"}},
			},
		})
	}))
	defer server.Close()

	client := New(server.URL, "chunks")
	hits, err := client.Query(context.Background(), []float32{0.1, 0.2}, 5)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(hits) != 2 {
		t.Fatalf("expected 2 hits, got %d", len(hits))
	}
	if hits[0].Distance != 0.25 {
		t.Fatalf("expected distance 0.25, got %v", hits[0].Distance)
	}
	if hits[0].AutoTags.Topic() != "hashing" {
		t.Fatalf("expected auto tags decoded, got %v", hits[0].AutoTags)
	}
	if hits[0].UserOverrides.Str(domain.MetaExamRegion) != "post" {
		t.Fatalf("expected user overrides decoded, got %v", hits[0].UserOverrides)
	}
	if hits[1].Distance != 0 {
		t.Fatalf("expected clamped distance 0, got %v", hits[1].Distance)
	}
}

func TestSetUserOverridesTouchesOnlyOverridesKey(t *testing.T) {
	var body map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/collections/chunks/points/payload" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		_ = json.NewEncoder(w).Encode(map[string]any{"status": "ok"})
	}))
	defer server.Close()

	client := New(server.URL, "chunks")
	err := client.SetUserOverrides(context.Background(), "chunk-1", domain.Metadata{domain.MetaExamRegion: "pre"})
	if err != nil {
		t.Fatalf("set overrides: %v", err)
	}

	payload := body["payload"].(map[string]any)
	if len(payload) != 1 {
		t.Fatalf("only user_overrides may be written, got %v", payload)
	}
	if _, ok := payload["user_overrides"]; !ok {
		t.Fatalf("missing user_overrides key: %v", payload)
	}
	points := body["points"].([]any)
	if len(points) != 1 || points[0] != "chunk-1" {
		t.Fatalf("unexpected points: %v", points)
	}
}

func TestDeleteClassChunksSendsFilter(t *testing.T) {
	var body map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/collections/chunks/points/delete" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		_ = json.NewEncoder(w).Encode(map[string]any{"status": "ok"})
	}))
	defer server.Close()

	client := New(server.URL, "chunks")
	if err := client.DeleteClassChunks(context.Background(), "cs101"); err != nil {
		t.Fatalf("delete class: %v", err)
	}

	filter := body["filter"].(map[string]any)
	must := filter["must"].([]any)
	cond := must[0].(map[string]any)
	if cond["key"] != "class_id" {
		t.Fatalf("expected class_id filter, got %v", cond)
	}
	match := cond["match"].(map[string]any)
	if match["value"] != "cs101" {
		t.Fatalf("expected class value in filter, got %v", match)
	}
}

func TestQueryServerErrorSurfaces(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := New(server.URL, "chunks")
	if _, err := client.Query(context.Background(), []float32{0.1}, 5); err == nil {
		t.Fatal("expected error from server failure")
	}
}
