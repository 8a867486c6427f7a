package services_test

import (
	"context"
	"testing"

	"modmatch/internal/services"
)

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithFolder(ctx, "/mods/RaidenShogun")
	ctx = services.WithMode(ctx, "quick")
	ctx = services.WithRequestID(ctx, "req-123")

	if folder, ok := services.FolderFromContext(ctx); !ok || folder != "/mods/RaidenShogun" {
		t.Fatalf("unexpected folder: %v %v", folder, ok)
	}
	if mode, ok := services.ModeFromContext(ctx); !ok || mode != "quick" {
		t.Fatalf("unexpected mode: %v %v", mode, ok)
	}
	if rid, ok := services.RequestIDFromContext(ctx); !ok || rid != "req-123" {
		t.Fatalf("unexpected request id: %v %v", rid, ok)
	}
}

func TestBlankValuesPreserveContext(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithFolder(ctx, "")
	ctx = services.WithMode(ctx, "")
	if _, ok := services.FolderFromContext(ctx); ok {
		t.Fatal("expected no folder value")
	}
	if _, ok := services.ModeFromContext(ctx); ok {
		t.Fatal("expected no mode value")
	}
}
