package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"exam-prep/internal/store"
)

func TestRunReturnsExitCodeOnStartupFailure(t *testing.T) {
	dir := t.TempDir()
	var stderr bytes.Buffer

	code := run([]string{
		"-dataset", filepath.Join(dir, "missing.json"),
		"-store", "memory",
		"-log-level", "error",
	}, strings.NewReader(""), &bytes.Buffer{}, &stderr)

	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "load dataset")
}

func TestRunRejectsUnknownFlag(t *testing.T) {
	code := run([]string{"-nope"}, strings.NewReader(""), &bytes.Buffer{}, &bytes.Buffer{})
	assert.Equal(t, 2, code)
}

func TestRunClosesStoreBeforeReturning(t *testing.T) {
	dir := t.TempDir()
	dataset := filepath.Join(dir, "questoes.json")
	require.NoError(t, os.WriteFile(dataset, []byte(`[{"id_questoes":"1","texto":"Q","disciplina":"Civil","alternativas":"a) x\nb) y","gabarito":"A"}]`), 0o600))
	storePath := filepath.Join(dir, "quiz.bolt")

	var stdout bytes.Buffer
	code := run([]string{
		"-dataset", dataset,
		"-users", filepath.Join(dir, "users.json"),
		"-store", "bolt",
		"-store-path", storePath,
		"-log-level", "error",
	}, strings.NewReader("exam 1\na\n"), &stdout, &bytes.Buffer{})
	require.Equal(t, 0, code)
	assert.Contains(t, stdout.String(), "Finished! Correct: 1/1")

	// bbolt holds an exclusive file lock until Close.
	reopened, err := store.NewBoltStore(storePath)
	require.NoError(t, err)
	defer reopened.Close()

	raw, err := reopened.Get(context.Background(), "user_history")
	require.NoError(t, err)
	assert.Contains(t, raw, `"questionId":"1"`)
}
