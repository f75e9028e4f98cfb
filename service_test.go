package imagestore_test

import (
	"context"
	"fmt"
	"net/url"
	"testing"
	"time"

	"github.com/mwantia/imagestore"
	"github.com/mwantia/imagestore/data"
	"github.com/mwantia/imagestore/driver/memory"
	"github.com/mwantia/imagestore/event"
)

func newTestService(t *testing.T) *imagestore.Service {
	t.Helper()

	service, err := imagestore.New(memory.NewMemoryDriver(), imagestore.WithoutTerminalLog())
	if err != nil {
		t.Fatalf("Service creation failed: %v", err)
	}

	if err := service.Open(context.Background()); err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() {
		service.Close(context.Background())
	})

	return service
}

func insertTestImages(t *testing.T, service *imagestore.Service, count int) {
	t.Helper()

	ctx := context.Background()
	base := time.Unix(1700000000, 0)

	for i := 1; i <= count; i++ {
		identifier := fmt.Sprintf("img-%02d", i)
		rec := data.NewImageRecord(identifier, identifier+".png", "image/png", int64(i), 100, 100)
		rec.Created = base.Add(time.Duration(i) * time.Minute)
		rec.Metadata = data.Metadata{"rank": i}

		if err := service.InsertImage(ctx, identifier, rec); err != nil {
			t.Fatalf("InsertImage %s failed: %v", identifier, err)
		}
	}
}

func TestListImagesFlow(t *testing.T) {
	service := newTestService(t)
	insertTestImages(t, service, 5)

	params := url.Values{}
	params.Set("limit", "3")

	response, err := service.ListImages(context.Background(), params)
	if err != nil {
		t.Fatalf("ListImages failed: %v", err)
	}

	if len(response.Images) != 3 {
		t.Fatalf("Expected 3 images, got %d", len(response.Images))
	}
	if response.Images[0].Identifier != "img-05" {
		t.Errorf("Expected newest image first, got %s", response.Images[0].Identifier)
	}
	if response.Headers.Get("ETag") == "" {
		t.Error("Expected ETag header set")
	}
	for _, img := range response.Images {
		if len(img.Metadata) != 0 {
			t.Errorf("Expected no metadata without the metadata flag, got %v", img.Metadata)
		}
	}
}

func TestListImagesMetadataFlag(t *testing.T) {
	service := newTestService(t)
	insertTestImages(t, service, 2)

	params := url.Values{}
	params.Set("metadata", "1")

	response, err := service.ListImages(context.Background(), params)
	if err != nil {
		t.Fatalf("ListImages failed: %v", err)
	}

	for _, img := range response.Images {
		if len(img.Metadata) == 0 {
			t.Errorf("Expected metadata projected for %s", img.Identifier)
		}
	}
}

func TestListImagesETagDeterminism(t *testing.T) {
	service := newTestService(t)
	insertTestImages(t, service, 3)

	first, err := service.ListImages(context.Background(), nil)
	if err != nil {
		t.Fatalf("ListImages failed: %v", err)
	}
	second, err := service.ListImages(context.Background(), nil)
	if err != nil {
		t.Fatalf("ListImages failed: %v", err)
	}

	if first.Headers.Get("ETag") != second.Headers.Get("ETag") {
		t.Error("Expected identical ETag for an unchanged record set")
	}

	// A newer record shifts the freshness marker and the ETag with it
	rec := data.NewImageRecord("img-99", "new.png", "image/png", 1, 1, 1)
	rec.Created = time.Unix(1700000000, 0).Add(99 * time.Minute)
	if err := service.InsertImage(context.Background(), "img-99", rec); err != nil {
		t.Fatalf("InsertImage failed: %v", err)
	}

	third, err := service.ListImages(context.Background(), nil)
	if err != nil {
		t.Fatalf("ListImages failed: %v", err)
	}
	if third.Headers.Get("ETag") == first.Headers.Get("ETag") {
		t.Error("Expected ETag to change after the record set changed")
	}
}

func TestHeadImages(t *testing.T) {
	service := newTestService(t)
	insertTestImages(t, service, 3)

	response, err := service.HeadImages(context.Background(), nil)
	if err != nil {
		t.Fatalf("HeadImages failed: %v", err)
	}

	if len(response.Images) != 0 {
		t.Errorf("Expected empty body, got %d images", len(response.Images))
	}
	if response.Headers.Get("ETag") == "" {
		t.Error("Expected ETag header preserved")
	}

	listed, err := service.ListImages(context.Background(), nil)
	if err != nil {
		t.Fatalf("ListImages failed: %v", err)
	}
	if response.Headers.Get("ETag") != listed.Headers.Get("ETag") {
		t.Error("Expected head and list to agree on the ETag")
	}
}

func TestMutationTopics(t *testing.T) {
	service := newTestService(t)

	var added, removed, updated []string
	service.Events().Attach(event.TopicImageAdded, func(ctx context.Context, e *event.Event) error {
		added = append(added, e.Identifier)
		return nil
	})
	service.Events().Attach(event.TopicImageRemoved, func(ctx context.Context, e *event.Event) error {
		removed = append(removed, e.Identifier)
		return nil
	})
	service.Events().Attach(event.TopicImageMetadataUpdated, func(ctx context.Context, e *event.Event) error {
		updated = append(updated, e.Identifier)
		return nil
	})

	ctx := context.Background()
	rec := data.NewImageRecord("img-1", "cat.png", "image/png", 2048, 640, 480)

	if err := service.InsertImage(ctx, "img-1", rec); err != nil {
		t.Fatalf("InsertImage failed: %v", err)
	}
	if err := service.ReplaceImageMetadata(ctx, "img-1", data.Metadata{"tag": "cat"}); err != nil {
		t.Fatalf("ReplaceImageMetadata failed: %v", err)
	}
	if err := service.ClearImageMetadata(ctx, "img-1"); err != nil {
		t.Fatalf("ClearImageMetadata failed: %v", err)
	}
	if err := service.DeleteImage(ctx, "img-1"); err != nil {
		t.Fatalf("DeleteImage failed: %v", err)
	}

	if len(added) != 1 || added[0] != "img-1" {
		t.Errorf("Expected one added notification, got %v", added)
	}
	if len(removed) != 1 || removed[0] != "img-1" {
		t.Errorf("Expected one removed notification, got %v", removed)
	}
	if len(updated) != 2 {
		t.Errorf("Expected two metadata notifications, got %v", updated)
	}
}

func TestMetadataRoundTripThroughService(t *testing.T) {
	service := newTestService(t)
	ctx := context.Background()

	rec := data.NewImageRecord("img-1", "cat.png", "image/png", 2048, 640, 480)
	if err := service.InsertImage(ctx, "img-1", rec); err != nil {
		t.Fatalf("InsertImage failed: %v", err)
	}

	if err := service.ReplaceImageMetadata(ctx, "img-1", data.Metadata{"tag": "cat"}); err != nil {
		t.Fatalf("ReplaceImageMetadata failed: %v", err)
	}

	meta, err := service.GetImageMetadata(ctx, "img-1")
	if err != nil {
		t.Fatalf("GetImageMetadata failed: %v", err)
	}
	if meta["tag"] != "cat" {
		t.Errorf("Expected metadata round trip, got %v", meta)
	}

	loaded, err := service.LoadImage(ctx, "img-1")
	if err != nil {
		t.Fatalf("LoadImage failed: %v", err)
	}
	if loaded.Filename != "cat.png" {
		t.Errorf("Expected core fields loaded, got %+v", loaded)
	}
}
