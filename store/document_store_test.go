package store

import (
	"bytes"
	"context"
	"encoding/gob"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	internalErrors "github.com/gcbaptista/resumatch/internal/errors"
	"github.com/gcbaptista/resumatch/model"
)

func rec(id, text string) model.DocumentRecord {
	return model.DocumentRecord{ID: id, Text: text, IngestedAt: time.Unix(1700000000, 0).UTC()}
}

func TestDocumentStore_PutGetDelete(t *testing.T) {
	ctx := context.Background()
	ds := NewDocumentStore()

	require.NoError(t, ds.Put(ctx, rec("a.pdf", "first")))
	got, err := ds.Get(ctx, "a.pdf")
	require.NoError(t, err)
	assert.Equal(t, "first", got.Text)
	assert.NotNil(t, got.Skills)
	assert.Len(t, got.Sections, 3)

	_, err = ds.Get(ctx, "missing")
	assert.True(t, errors.Is(err, internalErrors.ErrDocumentNotFound))

	require.NoError(t, ds.Delete(ctx, "a.pdf"))
	assert.Equal(t, 0, ds.Len())
	assert.True(t, errors.Is(ds.Delete(ctx, "a.pdf"), internalErrors.ErrDocumentNotFound))

	err = ds.Put(ctx, rec("", "no id"))
	assert.True(t, errors.Is(err, internalErrors.ErrInvalidInput))
}

func TestDocumentStore_OrderAndReplace(t *testing.T) {
	ctx := context.Background()
	ds := NewDocumentStore()
	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, ds.Put(ctx, rec(id, id)))
	}
	require.NoError(t, ds.Put(ctx, rec("a", "replaced")))

	all, err := ds.ListRecords(ctx, 0)
	require.NoError(t, err)
	ids := make([]string, len(all))
	for i, r := range all {
		ids[i] = r.ID
	}
	assert.Equal(t, []string{"b", "c", "a"}, ids)
	assert.Equal(t, "replaced", all[2].Text)
	assert.Equal(t, 3, ds.Len())

	limited, err := ds.ListRecords(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
	assert.Equal(t, "b", limited[0].ID)
}

func TestDocumentStore_Gob(t *testing.T) {
	ctx := context.Background()
	ds := NewDocumentStore()
	enriched := rec("cv.docx", "Skills\nPython")
	enriched.Skills = []string{"python"}
	enriched.Sections = model.Sections{model.SectionSkills: "python "}
	require.NoError(t, ds.Put(ctx, enriched))
	require.NoError(t, ds.Put(ctx, rec("empty.txt", "nothing")))

	var buf bytes.Buffer
	require.NoError(t, gob.NewEncoder(&buf).Encode(ds))

	restored := &DocumentStore{}
	require.NoError(t, gob.NewDecoder(&buf).Decode(restored))

	all, err := restored.ListRecords(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "cv.docx", all[0].ID)
	assert.Equal(t, []string{"python"}, all[0].Skills)
	assert.Equal(t, "python ", all[0].Sections[model.SectionSkills])
	assert.Equal(t, "", all[0].Sections[model.SectionEducation])

	// Enriched records with no skills must stay non-nil after a round trip.
	assert.NotNil(t, all[1].Skills)
	assert.Empty(t, all[1].Skills)
	assert.Len(t, all[1].Sections, 3)
}

func TestDocumentStore_Concurrent(t *testing.T) {
	ctx := context.Background()
	ds := NewDocumentStore()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("doc-%d", i%10)
			_ = ds.Put(ctx, rec(id, id))
			_, _ = ds.ListRecords(ctx, 5)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 10, ds.Len())
	all, _ := ds.ListRecords(ctx, 0)
	assert.Len(t, all, 10)
}
