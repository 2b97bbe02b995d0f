package cache

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/attrcheck/checker/report"
)

func sampleEntry() *Entry {
	iface := NewInterface()
	iface.Variables["my_model"] = "__main__.MyModel"
	iface.Classes["__main__.MyModel"] = &Class{
		Members: map[string]interface{}{"my_attr": "pynamodb.attributes.NumberAttribute"},
		Metadata: map[string]map[string]interface{}{
			"pynamodb_attributes": {
				"my_attr": map[string]interface{}{
					"type":         map[string]interface{}{".class": "UnionType", "items": []interface{}{"builtins.float", map[string]interface{}{".class": "NoneType"}}},
					"is_hash_key":  true,
					"is_range_key": false,
				},
			},
		},
	}
	return &Entry{
		Module:       "__main__",
		Path:         "main.py",
		SourceHash:   0xfeedfacecafebeef,
		Dependencies: map[string]uint64{"pynamodb.models": 42, "builtins": 7},
		Interface:    iface,
		Diagnostics: report.Diagnostics{
			{Path: "main.py", Module: "__main__", Line: 4, Severity: report.SeverityNote, Message: `Revealed type is "builtins.float"`},
		},
	}
}

func TestEntry_Fresh(t *testing.T) {
	entry := sampleEntry()
	entry.Version = Version
	var testCases = []struct {
		description  string
		sourceHash   uint64
		dependencies map[string]uint64
		expect       bool
	}{
		{description: "same source and dependencies", sourceHash: entry.SourceHash, dependencies: map[string]uint64{"pynamodb.models": 42, "builtins": 7}, expect: true},
		{description: "source changed", sourceHash: 1, dependencies: map[string]uint64{"pynamodb.models": 42, "builtins": 7}},
		{description: "dependency interface changed", sourceHash: entry.SourceHash, dependencies: map[string]uint64{"pynamodb.models": 43, "builtins": 7}},
		{description: "dependency added", sourceHash: entry.SourceHash, dependencies: map[string]uint64{"pynamodb.models": 42, "builtins": 7, "other": 1}},
	}
	for _, testCase := range testCases {
		assert.Equal(t, testCase.expect, entry.Fresh(testCase.sourceHash, testCase.dependencies), testCase.description)
	}
	assert.Equal(t, []string{"builtins", "pynamodb.models"}, entry.DependencyNames())

	var missing *Entry
	assert.False(t, missing.Fresh(1, nil))
}

func TestInterface_Hash(t *testing.T) {
	first, err := sampleEntry().Interface.Hash()
	require.NoError(t, err)
	second, err := sampleEntry().Interface.Hash()
	require.NoError(t, err)
	assert.Equal(t, first, second)

	changed := sampleEntry().Interface
	changed.Variables["other"] = "builtins.int"
	third, err := changed.Hash()
	require.NoError(t, err)
	assert.NotEqual(t, first, third)
}

func TestStores(t *testing.T) {
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	sqliteStore, err := NewSQLiteStore(db)
	require.NoError(t, err)
	defer sqliteStore.Close()

	var testCases = []struct {
		description string
		store       Store
	}{
		{description: "afs memory store", store: NewFSStore("mem://localhost/attrcheck/cache")},
		{description: "sqlite store", store: sqliteStore},
	}
	ctx := context.Background()
	for _, testCase := range testCases {
		missing, err := testCase.store.Get(ctx, "__main__")
		require.NoError(t, err, testCase.description)
		assert.Nil(t, missing, testCase.description)

		require.NoError(t, testCase.store.Put(ctx, sampleEntry()), testCase.description)
		loaded, err := testCase.store.Get(ctx, "__main__")
		require.NoError(t, err, testCase.description)
		require.NotNil(t, loaded, testCase.description)
		assert.Equal(t, Version, loaded.Version, testCase.description)
		assert.Equal(t, uint64(0xfeedfacecafebeef), loaded.SourceHash, testCase.description)
		assert.Equal(t, uint64(42), loaded.Dependencies["pynamodb.models"], testCase.description)
		require.Len(t, loaded.Diagnostics, 1, testCase.description)
		assert.Equal(t, report.SeverityNote, loaded.Diagnostics[0].Severity, testCase.description)

		field := loaded.Interface.Classes["__main__.MyModel"].Metadata["pynamodb_attributes"]["my_attr"].(map[string]interface{})
		assert.Equal(t, true, field["is_hash_key"], testCase.description)

		updated := sampleEntry()
		updated.SourceHash = 5
		require.NoError(t, testCase.store.Put(ctx, updated), testCase.description)
		loaded, err = testCase.store.Get(ctx, "__main__")
		require.NoError(t, err, testCase.description)
		assert.Equal(t, uint64(5), loaded.SourceHash, testCase.description)
	}
}

func TestSQLiteStore_Errors(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS module_cache").WillReturnResult(sqlmock.NewResult(0, 0))
	store, err := NewSQLiteStore(db)
	require.NoError(t, err)

	mock.ExpectQuery("SELECT payload FROM module_cache").
		WithArgs("broken").
		WillReturnError(errors.New("disk I/O error"))
	_, err = store.Get(context.Background(), "broken")
	assert.ErrorContains(t, err, "failed to load cache entry broken")

	mock.ExpectQuery("SELECT payload FROM module_cache").
		WithArgs("garbled").
		WillReturnRows(sqlmock.NewRows([]string{"payload"}).AddRow([]byte("{not json")))
	_, err = store.Get(context.Background(), "garbled")
	assert.ErrorContains(t, err, "failed to decode cache entry garbled")

	mock.ExpectExec("INSERT INTO module_cache").
		WithArgs("__main__", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnError(errors.New("database is locked"))
	err = store.Put(context.Background(), sampleEntry())
	assert.ErrorContains(t, err, "failed to store cache entry __main__")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOpen(t *testing.T) {
	store, err := Open(BackendFS, "mem://localhost/attrcheck/open", nil)
	require.NoError(t, err)
	assert.IsType(t, &FSStore{}, store)

	_, err = Open("redis", "", nil)
	assert.ErrorContains(t, err, `unsupported cache backend "redis"`)
}
