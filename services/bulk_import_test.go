package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"catalog-service/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runImport(t *testing.T, repo *memRepo, input string) (*models.BulkImportResult, error) {
	t.Helper()
	return NewBulkImporter(repo).Import(context.Background(), strings.NewReader(input))
}

func TestImport_MixedRows(t *testing.T) {
	repo := newMemRepo()
	input := "name,description,price,category,stock\n" +
		"Widget,A widget,9.99,Tools,5\n" +
		",Missing name,1,Tools,1\n" +
		"Bad,Bad price,abc,Tools,1"

	result, err := runImport(t, repo, input)
	require.NoError(t, err)

	assert.Equal(t, 1, result.InsertedCount)
	assert.Equal(t, 2, result.ErrorCount)
	assert.Equal(t, []models.RowError{
		{Row: 2, Error: ReasonMissingFields},
		{Row: 3, Error: ReasonInvalidPrice},
	}, result.Errors)

	require.Equal(t, 1, repo.insertCalls)
	require.Len(t, repo.inserted[0], 1)
	p := repo.inserted[0][0]
	assert.Equal(t, "Widget", p.Name)
	assert.Equal(t, "widget", p.Slug)
	assert.Equal(t, 9.99, p.Price)
	assert.Equal(t, 5, p.Stock)
	assert.True(t, p.IsActive)
	assert.False(t, p.CreatedAt.IsZero())
}

func TestImport_CurlyQuotedTags(t *testing.T) {
	repo := newMemRepo()
	input := "name,description,price,category,tags\n" +
		"Shirt,Cotton shirt,19.5,Apparel,\"“sale”,“new”\"\n"

	result, err := runImport(t, repo, input)
	require.NoError(t, err)
	require.Equal(t, 1, result.InsertedCount)
	assert.Equal(t, []string{`"sale"`, `"new"`}, repo.inserted[0][0].Tags)
}

func TestImport_ListFieldsAreTrimmedAndCompacted(t *testing.T) {
	repo := newMemRepo()
	input := "name,description,price,category,images\n" +
		"Lamp,Desk lamp,30,Home,\" a.jpg , ,b.jpg,\"\n"

	_, err := runImport(t, repo, input)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.jpg", "b.jpg"}, repo.inserted[0][0].Images)
}

func TestImport_RuleOrder(t *testing.T) {
	tests := []struct {
		name string
		row  string
		want string
	}{
		{"missing category beats bad price", "A,B,abc,,1", ReasonMissingFields},
		{"bad price beats bad stock", "A,B,abc,C,xyz", ReasonInvalidPrice},
		{"negative price", "A,B,-1,C,1", ReasonInvalidPrice},
		{"non-finite price", "A,B,NaN,C,1", ReasonInvalidPrice},
		{"infinite price", "A,B,Inf,C,1", ReasonInvalidPrice},
		{"bad stock", "A,B,1,C,many", ReasonInvalidStock},
		{"negative stock", "A,B,1,C,-3", ReasonInvalidStock},
		{"fractional stock", "A,B,1,C,2.5", ReasonInvalidStock},
		{"whitespace-only name", "   ,B,1,C,1", ReasonMissingFields},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newMemRepo()
			result, err := runImport(t, repo, "name,description,price,category,stock\n"+tt.row+"\n")
			require.NoError(t, err)
			assert.Equal(t, 0, result.InsertedCount)
			assert.Equal(t, []models.RowError{{Row: 1, Error: tt.want}}, result.Errors)
		})
	}
}

func TestImport_StockDefaultsToZero(t *testing.T) {
	repo := newMemRepo()
	input := "name,description,price,category,stock\n" +
		"A,desc,1,Cat,\n" +
		"B,desc,2,Cat\n"

	result, err := runImport(t, repo, input)
	require.NoError(t, err)
	require.Equal(t, 2, result.InsertedCount)
	for _, p := range repo.inserted[0] {
		assert.Equal(t, 0, p.Stock)
	}
}

func TestImport_BlankRowsAreSkippedAndNotCounted(t *testing.T) {
	repo := newMemRepo()
	input := "name,description,price,category\n" +
		"A,desc,1,Cat\n" +
		" , , , \n" +
		"\n" +
		",desc,1,Cat\n"

	result, err := runImport(t, repo, input)
	require.NoError(t, err)
	assert.Equal(t, 1, result.InsertedCount)
	assert.Equal(t, []models.RowError{{Row: 2, Error: ReasonMissingFields}}, result.Errors)
}

func TestImport_HeaderWithBOMAndPadding(t *testing.T) {
	repo := newMemRepo()
	input := "\ufeff name , description ,price,category\n  Mug , Big mug , 4.5 , Kitchen \n"

	result, err := runImport(t, repo, input)
	require.NoError(t, err)
	require.Equal(t, 1, result.InsertedCount)
	p := repo.inserted[0][0]
	assert.Equal(t, "Mug", p.Name)
	assert.Equal(t, "Big mug", p.Description)
	assert.Equal(t, 4.5, p.Price)
	assert.Equal(t, "Kitchen", p.Category)
}

func TestImport_HeaderIsCaseSensitive(t *testing.T) {
	repo := newMemRepo()
	result, err := runImport(t, repo, "Name,description,price,category\nA,desc,1,Cat\n")
	require.NoError(t, err)
	assert.Equal(t, []models.RowError{{Row: 1, Error: ReasonMissingFields}}, result.Errors)
}

func TestImport_CountsAddUpAndRowsIncrease(t *testing.T) {
	repo := newMemRepo()
	input := "name,description,price,category,stock\n" +
		"A,d,1,C,1\n" +
		"B,d,x,C,1\n" +
		"C,d,1,C,-1\n" +
		"D,d,1,C,0\n" +
		",,,,7\n" +
		"F,d,0,C\n"

	result, err := runImport(t, repo, input)
	require.NoError(t, err)
	assert.Equal(t, 6, result.InsertedCount+result.ErrorCount)
	assert.Equal(t, result.ErrorCount, len(result.Errors))
	for i := 1; i < len(result.Errors); i++ {
		assert.Greater(t, result.Errors[i].Row, result.Errors[i-1].Row)
	}
	assert.Equal(t, []int{2, 3, 5}, []int{result.Errors[0].Row, result.Errors[1].Row, result.Errors[2].Row})
}

func TestImport_AllRejectedStillInsertsOnce(t *testing.T) {
	repo := newMemRepo()
	result, err := runImport(t, repo, "name,description,price,category\n,,1,\n")
	require.NoError(t, err)

	assert.Equal(t, 1, repo.insertCalls)
	assert.Empty(t, repo.inserted[0])
	assert.Equal(t, 0, result.InsertedCount)
	assert.Equal(t, "No valid products to import", result.Message)
}

func TestImport_HeaderOnly(t *testing.T) {
	repo := newMemRepo()
	result, err := runImport(t, repo, "name,description,price,category\n")
	require.NoError(t, err)
	assert.Equal(t, 1, repo.insertCalls)
	assert.Equal(t, 0, result.InsertedCount)
	assert.Equal(t, 0, result.ErrorCount)
	assert.NotNil(t, result.Errors)
}

func TestImport_MalformedCSV(t *testing.T) {
	inputs := map[string]string{
		"unterminated quote": "name,description,price,category\n\"Widget,A widget,1,Tools\n",
		"bare quote":         "name,description,price,category\nWid\"get,A widget,1,Tools\n",
		"empty input":        "",
	}
	for name, input := range inputs {
		t.Run(name, func(t *testing.T) {
			repo := newMemRepo()
			result, err := runImport(t, repo, input)
			require.Error(t, err)
			assert.Nil(t, result)

			var perr *ParseError
			assert.True(t, errors.As(err, &perr))
			assert.Equal(t, 0, repo.insertCalls)
		})
	}
}

func TestImport_MalformedAfterValidRows(t *testing.T) {
	repo := newMemRepo()
	input := "name,description,price,category\nA,d,1,C\nB,\"d,1,C\n"

	_, err := runImport(t, repo, input)
	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, 0, repo.insertCalls)
}

func TestImport_StorageFailure(t *testing.T) {
	repo := newMemRepo()
	repo.insertErr = errStorageDown

	result, err := runImport(t, repo, "name,description,price,category\nA,d,1,C\n")
	assert.Nil(t, result)
	var serr *StorageError
	require.ErrorAs(t, err, &serr)
	assert.ErrorIs(t, err, errStorageDown)
	assert.Equal(t, 1, repo.insertCalls)
}

func TestImport_SlugLookupFailureIsStorageError(t *testing.T) {
	repo := newMemRepo()
	repo.slugErr = errStorageDown

	_, err := runImport(t, repo, "name,description,price,category\nA,d,1,C\n")
	var serr *StorageError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, 0, repo.insertCalls)
}

func TestImport_SlugCollisions(t *testing.T) {
	repo := newMemRepo()
	repo.put(models.Product{ID: mustUUID("11111111-1111-1111-1111-111111111111"), Name: "Lamp", Slug: "lamp"})

	input := "name,description,price,category\n" +
		"Lamp,d,1,C\n" +
		"Chair,d,1,C\n" +
		"chair!,d,1,C\n"

	_, err := runImport(t, repo, input)
	require.NoError(t, err)

	got := repo.inserted[0]
	require.Len(t, got, 3)
	assert.True(t, strings.HasPrefix(got[0].Slug, "lamp-"))
	assert.Len(t, got[0].Slug, len("lamp-")+8)
	assert.Equal(t, "chair", got[1].Slug)
	assert.True(t, strings.HasPrefix(got[2].Slug, "chair-"))
}

func TestImportUpload_RemovesUploadOnEveryPath(t *testing.T) {
	tests := []struct {
		name    string
		csv     string
		repoErr error
		wantErr bool
	}{
		{"success", "name,description,price,category\nA,d,1,C\n", nil, false},
		{"parse error", "name,description\n\"broken\n", nil, true},
		{"storage error", "name,description,price,category\nA,d,1,C\n", errStorageDown, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newMemRepo()
			repo.insertErr = tt.repoErr
			store := newMemUploads()
			key := store.stage(tt.csv)

			_, err := NewBulkImporter(repo).ImportUpload(context.Background(), store, key)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, []string{key}, store.removed)
			assert.Empty(t, store.files)
		})
	}
}

func TestImportUpload_MissingUpload(t *testing.T) {
	store := newMemUploads()
	_, err := NewBulkImporter(newMemRepo()).ImportUpload(context.Background(), store, "nope.csv")
	require.Error(t, err)
	assert.Equal(t, []string{"nope.csv"}, store.removed)
}
