package hcloud

import (
	"context"
	"fmt"
	"strings"

	"github.com/hetznercloud/hcloud-go/v2/hcloud"
	"golang.org/x/crypto/ssh"
)

// resolveServerType resolves a server type name to a server type object.
func (c *RealClient) resolveServerType(ctx context.Context, serverType string) (*hcloud.ServerType, error) {
	serverTypeObj, _, err := c.client.ServerType.Get(ctx, serverType)
	if err != nil {
		return nil, fmt.Errorf("failed to get server type: %w", err)
	}
	if serverTypeObj == nil {
		return nil, fmt.Errorf("server type not found: %s", serverType)
	}
	return serverTypeObj, nil
}

// resolveImage resolves an image name for the architecture of the server type.
func (c *RealClient) resolveImage(ctx context.Context, image string, serverTypeObj *hcloud.ServerType) (*hcloud.Image, error) {
	imageObj, _, err := c.client.Image.GetForArchitecture(ctx, image, serverTypeObj.Architecture)
	if err != nil {
		return nil, fmt.Errorf("failed to get image: %w", err)
	}
	if imageObj == nil {
		return nil, fmt.Errorf("image not found: %s (%s)", image, serverTypeObj.Architecture)
	}
	if imageObj.Status != "" && imageObj.Status != hcloud.ImageStatusAvailable {
		return nil, fmt.Errorf("image %s is %s", image, imageObj.Status)
	}
	return imageObj, nil
}

// resolveSSHKeys resolves SSH key names/IDs to SSH key objects.
func (c *RealClient) resolveSSHKeys(ctx context.Context, sshKeys []string) ([]*hcloud.SSHKey, error) {
	var sshKeyObjs []*hcloud.SSHKey
	for _, key := range sshKeys {
		keyObj, _, err := c.client.SSHKey.Get(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("failed to get ssh key %s: %w", key, err)
		}
		if keyObj == nil {
			return nil, fmt.Errorf("ssh key not found: %s", key)
		}
		sshKeyObjs = append(sshKeyObjs, keyObj)
	}
	return sshKeyObjs, nil
}

// resolveLocation resolves a location name to a location object.
func (c *RealClient) resolveLocation(ctx context.Context, location string) (*hcloud.Location, error) {
	if location == "" {
		return nil, nil
	}

	locObj, _, err := c.client.Location.Get(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("failed to get location %s: %w", location, err)
	}
	if locObj == nil {
		return nil, fmt.Errorf("location not found: %s", location)
	}
	return locObj, nil
}

// ensureSSHKey uploads an authorized_keys formatted public key unless a key
// with the same fingerprint already exists in the project.
func (c *RealClient) ensureSSHKey(ctx context.Context, publicKey string, labels map[string]string) (*hcloud.SSHKey, error) {
	parsed, _, _, _, err := ssh.ParseAuthorizedKey([]byte(publicKey))
	if err != nil {
		return nil, fmt.Errorf("invalid ssh public key: %w", err)
	}
	fingerprint := ssh.FingerprintLegacyMD5(parsed)
	name := "cloudweave-" + strings.ReplaceAll(fingerprint, ":", "")[:12]

	return (&EnsureOperation[*hcloud.SSHKey, hcloud.SSHKeyCreateOpts]{
		Name:         fingerprint,
		ResourceType: "ssh key",
		Get:          c.client.SSHKey.GetByFingerprint,
		Create:       c.client.SSHKey.Create,
		CreateOpts: func() hcloud.SSHKeyCreateOpts {
			return hcloud.SSHKeyCreateOpts{
				Name:      name,
				PublicKey: strings.TrimSpace(publicKey),
				Labels:    labels,
			}
		},
	}).Execute(ctx)
}
