package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/casetrail-cli/internal/core/domain"
)

func TestValidateCmd_Use(t *testing.T) {
	assert.Equal(t, "validate [file]", validateCmd.Use)
}

func TestValidateCmd_CleanFile(t *testing.T) {
	cleanup := swapIngest(&mockIngestService{report: &domain.ValidationReport{
		Size: domain.SizeCheck{
			Category:        domain.SizeSingleChunk,
			EstimatedTokens: 40,
		},
		CanProcess: true,
	}})
	defer cleanup()

	path := writeTempFile(t, t.TempDir(), "email1.txt")

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"validate", path})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "OK")
	assert.Contains(t, buf.String(), "single_chunk")
}

func TestValidateCmd_RejectedFile(t *testing.T) {
	cleanup := swapIngest(&mockIngestService{report: &domain.ValidationReport{
		CanProcess: false,
		Errors:     []string{"file contains potentially malicious content"},
	}})
	defer cleanup()

	path := writeTempFile(t, t.TempDir(), "bad.txt")

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"validate", path})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "REJECTED")
	assert.Contains(t, buf.String(), "malicious")
}

func TestValidateCmd_JSONOutput(t *testing.T) {
	cleanup := swapIngest(&mockIngestService{report: &domain.ValidationReport{CanProcess: true}})
	defer cleanup()

	path := writeTempFile(t, t.TempDir(), "email1.txt")

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"validate", "--json", path})
	defer func() {
		rootCmd.SetArgs(nil)
		validateJSON = false
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), `"can_process": true`)
}

func TestValidateCmd_InvalidType(t *testing.T) {
	cleanup := swapIngest(&mockIngestService{})
	defer cleanup()

	path := writeTempFile(t, t.TempDir(), "email1.txt")

	rootCmd.SetOut(new(bytes.Buffer))
	rootCmd.SetErr(new(bytes.Buffer))
	rootCmd.SetArgs([]string{"validate", "--type", "parchment", path})
	defer func() {
		rootCmd.SetArgs(nil)
		validateType = ""
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown document type")
}

func TestValidateCmd_ServiceNotConfigured(t *testing.T) {
	cleanup := swapIngest(nil)
	defer cleanup()

	path := writeTempFile(t, t.TempDir(), "email1.txt")

	rootCmd.SetOut(new(bytes.Buffer))
	rootCmd.SetErr(new(bytes.Buffer))
	rootCmd.SetArgs([]string{"validate", path})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "ingest service not configured")
}
