package version

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"runtime/debug"
	"strconv"
	"strings"
	"time"

	"github.com/pterm/pterm"
)

// Valores padrão, sobrescritos por ldflags ou pelo build info.
var (
	Version   = "0.0.0-dev"
	Commit    = ""
	BuildTime = ""
)

// ReleasesURL aponta para a última release publicada.
var ReleasesURL = "https://api.github.com/repos/diillson/ads-budget-realloc-go/releases/latest"

const installHint = "go install github.com/diillson/ads-budget-realloc-go/cmd/ads-realloc@latest"

func init() {
	applyBuildInfo(debug.ReadBuildInfo())
}

// applyBuildInfo preenche Commit/BuildTime/Version a partir das configurações
// vcs.* embutidas pelo Go. Valores vindos de ldflags têm precedência.
func applyBuildInfo(bi *debug.BuildInfo, ok bool) {
	if !ok || bi == nil || (Version != "" && Version != "0.0.0-dev") {
		return
	}

	settings := make(map[string]string, len(bi.Settings))
	for _, s := range bi.Settings {
		settings[s.Key] = s.Value
	}

	if rev := settings["vcs.revision"]; Commit == "" && len(rev) >= 7 {
		Commit = rev[:7]
	}
	if ts, err := time.Parse(time.RFC3339, settings["vcs.time"]); BuildTime == "" && err == nil {
		BuildTime = ts.UTC().Format("2006-01-02T15:04:05Z")
	}
	if tag := strings.TrimPrefix(settings["vcs.tag"], "v"); tag != "" {
		Version = tag
		if strings.EqualFold(settings["vcs.modified"], "true") {
			Version += "-dirty"
		}
	}
}

// LatestRelease consulta a última release publicada e diz se ela é mais nova
// que currentVersion.
func LatestRelease(ctx context.Context, client *http.Client, currentVersion string) (string, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ReleasesURL, nil)
	if err != nil {
		return "", false, err
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := client.Do(req)
	if err != nil {
		return "", false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", false, fmt.Errorf("release lookup returned %s", resp.Status)
	}

	var release struct {
		TagName string `json:"tag_name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return "", false, fmt.Errorf("error decoding release: %w", err)
	}

	latest := strings.TrimPrefix(release.TagName, "v")
	return latest, compareVersions(latest, currentVersion) > 0, nil
}

// CheckLatestVersion avisa no console quando há uma versão mais nova.
// Versões de desenvolvimento não são verificadas e falhas são ignoradas.
func CheckLatestVersion(currentVersion string) {
	if strings.HasSuffix(currentVersion, "-dev") {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	latest, newer, err := LatestRelease(ctx, http.DefaultClient, currentVersion)
	if err != nil || !newer {
		return
	}

	pterm.Warning.Printfln("A new version of Ads Budget Reallocator is available: %s", latest)
	pterm.Info.Printfln("Please update using: %s", installHint)
}

// compareVersions compara versões "x.y.z" numericamente, ignorando sufixos
// como "-dirty" ou "-rc1". Retorna -1, 0 ou 1.
func compareVersions(a, b string) int {
	pa, pb := versionParts(a), versionParts(b)
	for i := 0; i < 3; i++ {
		switch {
		case pa[i] > pb[i]:
			return 1
		case pa[i] < pb[i]:
			return -1
		}
	}
	return 0
}

func versionParts(v string) [3]int {
	var parts [3]int
	v = strings.TrimPrefix(v, "v")
	if i := strings.IndexAny(v, "-+"); i >= 0 {
		v = v[:i]
	}
	for i, field := range strings.SplitN(v, ".", 3) {
		n, err := strconv.Atoi(field)
		if err != nil {
			break
		}
		parts[i] = n
	}
	return parts
}

// FormatVersion retorna a versão formatada com commit e build time.
// Ex.: "1.2.3 (commit: abc1234, built at: 2025-10-23T10:20:30Z)"
func FormatVersion() string {
	ver := Version
	if ver == "" {
		ver = "0.0.0-dev"
	}

	switch {
	case Commit == "" && BuildTime == "":
		return fmt.Sprintf("%s (development)", ver)
	case BuildTime == "":
		return fmt.Sprintf("%s (commit: %s)", ver, Commit)
	}

	commit := Commit
	if commit == "" {
		commit = "development"
	}
	return fmt.Sprintf("%s (commit: %s, built at: %s)", ver, commit, BuildTime)
}
