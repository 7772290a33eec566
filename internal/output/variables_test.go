package output

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestVariables(t *testing.T) {
	vars := Variables(Result{Version: "1.2.3", Reference: "v1.2.3", Entry: "ignored"})
	require.Equal(t, map[string]string{
		"VERSIONIST_VERSION":   "1.2.3",
		"VERSIONIST_REFERENCE": "v1.2.3",
		"VERSIONIST_DRY_RUN":   "false",
	}, vars)

	var buf bytes.Buffer
	require.NoError(t, WriteAll(&buf, vars))
	require.Equal(t, "VERSIONIST_DRY_RUN=false\nVERSIONIST_REFERENCE=v1.2.3\nVERSIONIST_VERSION=1.2.3\n", buf.String())
}
