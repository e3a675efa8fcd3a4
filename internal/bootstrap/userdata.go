package bootstrap

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// ScriptPath is where UserData places the startup script on the instance.
const ScriptPath = "/opt/cloudweave/bootstrap.sh"

type cloudConfig struct {
	SSHPasswordAuth bool        `yaml:"ssh_pwauth"`
	Chpasswd        *chpasswd   `yaml:"chpasswd,omitempty"`
	WriteFiles      []writeFile `yaml:"write_files,omitempty"`
	RunCmd          [][]string  `yaml:"runcmd,omitempty"`
}

type chpasswd struct {
	Expire bool           `yaml:"expire"`
	Users  []chpasswdUser `yaml:"users"`
}

type chpasswdUser struct {
	Name     string `yaml:"name"`
	Password string `yaml:"password"`
	Type     string `yaml:"type"`
}

type writeFile struct {
	Path        string `yaml:"path"`
	Permissions string `yaml:"permissions"`
	Content     string `yaml:"content"`
}

// UserData renders a cloud-config document that sets the login password of
// username, enables password SSH logins and runs script once on first boot.
// An empty password or script leaves the respective part out.
func UserData(username, password, script string) (string, error) {
	cfg := cloudConfig{SSHPasswordAuth: password != ""}
	if password != "" {
		if username == "" {
			return "", fmt.Errorf("username is required when setting a password")
		}
		cfg.Chpasswd = &chpasswd{
			Users: []chpasswdUser{{Name: username, Password: password, Type: "text"}},
		}
	}
	if script != "" {
		cfg.WriteFiles = []writeFile{{Path: ScriptPath, Permissions: "0700", Content: script}}
		cfg.RunCmd = [][]string{{"/bin/bash", ScriptPath}}
	}

	out, err := yaml.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("failed to render cloud-config: %w", err)
	}
	return "#cloud-config\n" + string(out), nil
}
