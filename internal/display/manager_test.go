package display

import (
	"context"
	"errors"
	"testing"

	"github.com/fhuszti/medias-display-go/internal/mock"
	"github.com/fhuszti/medias-display-go/internal/model"
	"github.com/fhuszti/medias-display-go/internal/registry"
	mediaService "github.com/fhuszti/medias-display-go/internal/usecase/media"
	"github.com/fhuszti/medias-display-go/internal/uuid"
)

func newManager(medias ...*model.Media) (*Manager, *registry.Registry, *mock.BlobFetcher) {
	getter := &mock.MediaGetter{Medias: map[uuid.UUID]*model.Media{}}
	for _, m := range medias {
		getter.Medias[m.ID] = m
	}
	reg := registry.New("http://x")
	f := &mock.BlobFetcher{}
	return NewManager(reg, getter, f), reg, f
}

func TestManager_MountGetUnmount(t *testing.T) {
	m := imageMedia()
	mgr, reg, _ := newManager(m)
	ctx := context.Background()

	s, err := mgr.Mount(ctx, &m.ID, model.SizeSmall)
	if err != nil {
		t.Fatalf("Mount: %v", err)
	}
	if mgr.Len() != 1 {
		t.Errorf("len = %d; want 1", mgr.Len())
	}

	for s.State != StateReady {
		if s, err = mgr.Wait(ctx, s.ID, s.Version); err != nil {
			t.Fatalf("Wait: %v", err)
		}
	}
	got, err := mgr.Get(s.ID)
	if err != nil || got.URL != s.URL {
		t.Errorf("Get = %+v, %v", got, err)
	}

	if err := mgr.Unmount(ctx, s.ID); err != nil {
		t.Fatalf("Unmount: %v", err)
	}
	if reg.Len() != 0 {
		t.Error("unmount must release the registry entry")
	}
	if _, err := mgr.Get(s.ID); !errors.Is(err, ErrDisplayNotFound) {
		t.Errorf("Get after unmount = %v; want ErrDisplayNotFound", err)
	}
	if err := mgr.Unmount(ctx, s.ID); !errors.Is(err, ErrDisplayNotFound) {
		t.Errorf("second Unmount = %v; want ErrDisplayNotFound", err)
	}
}

func TestManager_MountWithoutFile(t *testing.T) {
	mgr, _, f := newManager()

	s, err := mgr.Mount(context.Background(), nil, model.SizeOriginal)
	if err != nil {
		t.Fatalf("Mount: %v", err)
	}
	if s.State != StateNoFile || s.FileID != nil {
		t.Errorf("snapshot = %+v", s)
	}
	if f.Calls() != 0 {
		t.Error("nothing should be fetched")
	}
}

func TestManager_CatalogueErrors(t *testing.T) {
	mgr, _, _ := newManager()
	mgr.getter = &mock.MediaGetter{Err: mediaService.ErrMediaNotReady}
	id := uuid.NewUUID()

	if _, err := mgr.Mount(context.Background(), &id, model.SizeSmall); !errors.Is(err, mediaService.ErrMediaNotReady) {
		t.Fatalf("Mount = %v; want ErrMediaNotReady", err)
	}
	if mgr.Len() != 0 {
		t.Error("failed mounts must not be kept")
	}
}

func TestManager_Update(t *testing.T) {
	m1, m2 := imageMedia(), imageMedia()
	mgr, reg, _ := newManager(m1, m2)
	ctx := context.Background()

	s, _ := mgr.Mount(ctx, &m1.ID, model.SizeMedium)
	s, err := mgr.Update(ctx, s.ID, &m2.ID, model.SizeLarge)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	for s.State != StateReady {
		s, _ = mgr.Wait(ctx, s.ID, s.Version)
	}
	if *s.FileID != m2.ID || s.Size != model.SizeLarge {
		t.Errorf("snapshot = %+v", s)
	}
	if _, ok := reg.Lookup(m1.ID.String(), model.SizeMedium); ok {
		t.Error("previous entry must be released")
	}

	if _, err := mgr.Update(ctx, uuid.NewUUID(), &m1.ID, model.SizeSmall); !errors.Is(err, ErrDisplayNotFound) {
		t.Errorf("Update unknown = %v; want ErrDisplayNotFound", err)
	}
}

func TestManager_Shutdown(t *testing.T) {
	m := imageMedia()
	mgr, reg, _ := newManager(m)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := mgr.Mount(ctx, &m.ID, model.SizeSmall); err != nil {
			t.Fatalf("Mount: %v", err)
		}
	}
	mgr.Shutdown(ctx)

	if mgr.Len() != 0 || reg.Len() != 0 {
		t.Errorf("displays = %d, entries = %d; want 0/0", mgr.Len(), reg.Len())
	}
	if _, err := mgr.Mount(ctx, &m.ID, model.SizeSmall); !errors.Is(err, ErrManagerClosed) {
		t.Errorf("Mount after Shutdown = %v; want ErrManagerClosed", err)
	}
}
