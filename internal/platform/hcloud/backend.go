package hcloud

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/hashicorp/go-multierror"
	"github.com/hetznercloud/hcloud-go/v2/hcloud"

	"github.com/imamik/cloudweave/internal/backend"
	"github.com/imamik/cloudweave/internal/bootstrap"
	"github.com/imamik/cloudweave/internal/util/async"
	"github.com/imamik/cloudweave/internal/util/labels"
	"github.com/imamik/cloudweave/internal/util/naming"
)

// Username is the login user of every server.
const Username = "root"

// Defaults are used for spec fields left empty.
type Defaults struct {
	Location   string
	ServerType string
	Image      string
	// SSHKeys are names or IDs of keys already present in the project.
	SSHKeys []string
}

// Backend adapts a RealClient to backend.Backend.
type Backend struct {
	name     string
	client   *RealClient
	defaults Defaults
}

var _ backend.Backend = (*Backend)(nil)

// NewBackend creates the backend registered under name.
func NewBackend(name string, client *RealClient, defaults Defaults) *Backend {
	return &Backend{name: name, client: client, defaults: defaults}
}

func (b *Backend) Name() string {
	return b.name
}

// CreateInstances creates the servers of spec in parallel. Servers that were
// created are returned even when others failed.
func (b *Backend) CreateInstances(ctx context.Context, spec backend.InstanceSpec) ([]backend.InstanceInfo, error) {
	if err := spec.Validate(); err != nil {
		return nil, fmt.Errorf("invalid instance spec: %w", err)
	}

	opts, err := b.createOpts(ctx, spec)
	if err != nil {
		return nil, err
	}

	count := spec.EffectiveCount()
	infos := make([]backend.InstanceInfo, count)
	tasks := make([]async.Task, count)
	for i := range count {
		name := naming.Instance(spec.Name, i+1, count)
		tasks[i] = async.Task{Name: name, Func: func(ctx context.Context) error {
			serverOpts := opts
			serverOpts.Name = name
			info, err := b.createOne(ctx, serverOpts, spec.Password)
			infos[i] = info
			return err
		}}
	}

	var errs *multierror.Error
	created := make([]backend.InstanceInfo, 0, count)
	for i, res := range async.RunAll(ctx, tasks) {
		if infos[i].ID != "" {
			created = append(created, infos[i])
		}
		if res.Err != nil {
			errs = multierror.Append(errs, res.Err)
		}
	}
	return created, errs.ErrorOrNil()
}

func (b *Backend) createOne(ctx context.Context, opts hcloud.ServerCreateOpts, password string) (backend.InstanceInfo, error) {
	server, rootPassword, err := b.client.CreateServer(ctx, opts)
	if server == nil {
		return backend.InstanceInfo{}, err
	}
	if password == "" {
		password = rootPassword
	}
	if err != nil {
		info := b.toInfo(server)
		info.Status = backend.StatusFailed
		info.Password = password
		return info, err
	}

	if resolved, ipErr := b.client.WaitForIPv4(ctx, server); ipErr == nil {
		server = resolved
	}
	info := b.toInfo(server)
	info.Password = password
	if info.Address == "" {
		info.Status = backend.StatusUnreachable
	} else if info.Status != backend.StatusRunning {
		info.Status = backend.StatusRunning
	}
	return info, nil
}

// createOpts resolves everything shared by the servers of one spec.
func (b *Backend) createOpts(ctx context.Context, spec backend.InstanceSpec) (hcloud.ServerCreateOpts, error) {
	serverType := spec.InstanceType
	if serverType == "" {
		serverType = ServerTypeFor(spec.Resources, b.defaults.ServerType)
	}
	serverTypeObj, err := b.client.resolveServerType(ctx, serverType)
	if err != nil {
		return hcloud.ServerCreateOpts{}, err
	}

	image := spec.Image
	if image == "" {
		image = b.defaults.Image
	}
	imageObj, err := b.client.resolveImage(ctx, image, serverTypeObj)
	if err != nil {
		return hcloud.ServerCreateOpts{}, err
	}

	location := spec.Network.Location
	if location == "" {
		location = b.defaults.Location
	}
	locObj, err := b.client.resolveLocation(ctx, location)
	if err != nil {
		return hcloud.ServerCreateOpts{}, err
	}

	serverLabels := labels.NewLabelBuilder().
		Merge(spec.Labels).
		WithRole(string(spec.Role)).
		WithBackend(b.name).
		Build()

	sshKeys, err := b.client.resolveSSHKeys(ctx, b.defaults.SSHKeys)
	if err != nil {
		return hcloud.ServerCreateOpts{}, err
	}
	if spec.SSHKey != "" {
		key, err := b.client.ensureSSHKey(ctx, spec.SSHKey, labels.NewLabelBuilder().WithBackend(b.name).Build())
		if err != nil {
			return hcloud.ServerCreateOpts{}, err
		}
		sshKeys = append(sshKeys, key)
	}

	userData, err := userDataFor(spec)
	if err != nil {
		return hcloud.ServerCreateOpts{}, err
	}

	return hcloud.ServerCreateOpts{
		ServerType: serverTypeObj,
		Image:      imageObj,
		Location:   locObj,
		SSHKeys:    sshKeys,
		Labels:     serverLabels,
		UserData:   userData,
	}, nil
}

func userDataFor(spec backend.InstanceSpec) (string, error) {
	if spec.Password == "" && spec.StartupScript == "" {
		return "", nil
	}
	user := ""
	if spec.Password != "" {
		user = Username
	}
	return bootstrap.UserData(user, spec.Password, spec.StartupScript)
}

// ListInstances returns the servers this backend created, filtered by the
// cluster and role labels.
func (b *Backend) ListInstances(ctx context.Context, filter backend.Filter) ([]backend.InstanceInfo, error) {
	selector := labels.NewLabelBuilder().
		WithBackend(b.name).
		WithCluster(filter.Cluster).
		WithRole(string(filter.Role)).
		Build()

	servers, err := b.client.GetServersBySelector(ctx, labels.Selector(selector))
	if err != nil {
		return nil, err
	}

	var out []backend.InstanceInfo
	for _, s := range servers {
		info := b.toInfo(s)
		if filter.Matches(info) {
			out = append(out, info)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (b *Backend) DeleteInstance(ctx context.Context, ref string) error {
	server, err := b.lookup(ctx, ref)
	if err != nil {
		return err
	}
	return b.client.DeleteServer(ctx, strconv.FormatInt(server.ID, 10))
}

func (b *Backend) StartInstance(ctx context.Context, ref string) error {
	server, err := b.lookup(ctx, ref)
	if err != nil {
		return err
	}
	return b.client.PoweronServer(ctx, server)
}

func (b *Backend) StopInstance(ctx context.Context, ref string) error {
	server, err := b.lookup(ctx, ref)
	if err != nil {
		return err
	}
	return b.client.PoweroffServer(ctx, server)
}

func (b *Backend) lookup(ctx context.Context, ref string) (*hcloud.Server, error) {
	server, err := b.client.GetServer(ctx, ref)
	if err != nil {
		return nil, err
	}
	if server == nil {
		return nil, fmt.Errorf("server %q: %w", ref, backend.ErrNotFound)
	}
	return server, nil
}

func (b *Backend) toInfo(s *hcloud.Server) backend.InstanceInfo {
	info := backend.InstanceInfo{
		Backend:   b.name,
		ID:        strconv.FormatInt(s.ID, 10),
		Name:      s.Name,
		Role:      backend.Role(s.Labels[labels.KeyRole]),
		Username:  Username,
		Status:    toStatus(s.Status),
		CreatedAt: s.Created,
	}
	if hasIPv4(s) {
		info.Address = s.PublicNet.IPv4.IP.String()
	}
	if len(s.PrivateNet) > 0 && s.PrivateNet[0].IP != nil {
		info.PrivateAddress = s.PrivateNet[0].IP.String()
	}
	return info
}

func toStatus(status hcloud.ServerStatus) backend.Status {
	switch status {
	case hcloud.ServerStatusRunning:
		return backend.StatusRunning
	case hcloud.ServerStatusOff, hcloud.ServerStatusStopping:
		return backend.StatusStopped
	case hcloud.ServerStatusUnknown:
		return backend.StatusUnreachable
	default:
		return backend.StatusPending
	}
}
