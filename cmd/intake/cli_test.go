package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const mediationAnswers = `
firstName: Jane
lastName: Doe
email: jane@example.com
phone: "555-123-4567"
streetAddress: 1 Main St
city: Springfield
state: IL
zipCode: 62701
disputeType: neighbor
otherParty: John Roe
disputeDescription: Ongoing disagreement about a shared fence line.
courtInvolvement: false
preferredContact: email
canLeaveVoicemail: true
canText: "No"
`

func writeAnswers(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "answers.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestFormsCommand(t *testing.T) {
	out, err := execute(t, "forms")
	require.NoError(t, err)
	assert.Contains(t, out, "mediation (Mediation)")
	assert.Contains(t, out, "facilitation (Facilitation)")

	out, err = execute(t, "forms", "-o", "yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "serviceType: Mediation")
}

func TestSubmitDryRun(t *testing.T) {
	path := writeAnswers(t, mediationAnswers)

	out, err := execute(t, "submit", "--form", "mediation", "--answers", path, "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, "step 4/4")
	assert.Contains(t, out, `"zipCode": "62701"`)
	assert.Contains(t, out, `"canLeaveVoicemail": "Yes"`)
}

func TestSubmitStopsAtInvalidStep(t *testing.T) {
	path := writeAnswers(t, "firstName: Jane\nemail: nope\n")

	out, err := execute(t, "submit", "--form", "mediation", "--answers", path, "--dry-run")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "step 1")
	assert.Contains(t, out, "> lastName: This field is required")
	assert.Contains(t, out, "email: Enter a valid email address")
}

func TestSubmitPostsToServer(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"submissionId":"sub-42"}`))
	}))
	defer srv.Close()

	path := writeAnswers(t, mediationAnswers)
	out, err := execute(t, "submit", "--form", "mediation", "--answers", path, "--server", srv.URL)
	require.NoError(t, err)
	assert.Contains(t, out, "submission id: sub-42")
	assert.Equal(t, "Mediation", got["serviceType"])
}

func TestSubmitUnknownForm(t *testing.T) {
	path := writeAnswers(t, mediationAnswers)
	_, err := execute(t, "submit", "--form", "arbitration", "--answers", path)
	require.Error(t, err)
}
