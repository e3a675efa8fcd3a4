package bootstrap

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/imamik/cloudweave/internal/backend"
)

// Parameter names understood by the embedded templates.
const (
	ParamClusterName    = "cluster-name"
	ParamArtifactPath   = "artifact-path"
	ParamNotifyBotToken = "notify-bot-token"
	ParamNotifyChatID   = "notify-chat-id"
	ParamLeaderAddress  = "leader-address"
	ParamJoinToken      = "join-token"
)

// requiredParams lists the parameters each role must receive. Keys in
// nonEmpty must also carry a value; notification parameters may be empty,
// which disables notifications in the script.
var (
	requiredParams = map[backend.Role][]string{
		backend.RoleManager: {ParamArtifactPath, ParamNotifyBotToken, ParamNotifyChatID},
		backend.RoleWorker:  {ParamLeaderAddress, ParamJoinToken},
	}
	nonEmpty = map[string]bool{
		ParamArtifactPath:  true,
		ParamLeaderAddress: true,
		ParamJoinToken:     true,
	}
)

var placeholderPattern = regexp.MustCompile(`\{\{\s*([A-Za-z0-9_.-]+)\s*\}\}`)

// Compose renders baseTemplate for role.
func Compose(role backend.Role, baseTemplate string, params map[string]string) (string, error) {
	if !role.Valid() {
		return "", fmt.Errorf("invalid role %q", role)
	}
	if err := checkRequired(role, params); err != nil {
		return "", err
	}
	for name, value := range params {
		if strings.ContainsRune(value, 0) {
			return "", &InvalidParameterError{Name: name, Reason: "contains NUL byte"}
		}
	}

	var missing []string
	seen := make(map[string]bool)
	out := placeholderPattern.ReplaceAllStringFunc(baseTemplate, func(match string) string {
		name := placeholderPattern.FindStringSubmatch(match)[1]
		value, ok := params[name]
		if !ok {
			if !seen[name] {
				seen[name] = true
				missing = append(missing, name)
			}
			return match
		}
		return shellQuote(value)
	})

	if len(missing) > 0 {
		sort.Strings(missing)
		return "", &UnresolvedPlaceholderError{Names: missing}
	}
	return out, nil
}

func checkRequired(role backend.Role, params map[string]string) error {
	var missing []string
	for _, name := range requiredParams[role] {
		value, ok := params[name]
		if !ok || (nonEmpty[name] && strings.TrimSpace(value) == "") {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return &MissingParameterError{Role: role, Names: missing}
	}
	return nil
}

// shellQuote renders s as a single POSIX shell word.
func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
