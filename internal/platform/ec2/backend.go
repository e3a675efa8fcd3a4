package ec2

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/aws/smithy-go"
	"github.com/hashicorp/go-multierror"

	"github.com/imamik/cloudweave/internal/backend"
	"github.com/imamik/cloudweave/internal/bootstrap"
	"github.com/imamik/cloudweave/internal/config"
	"github.com/imamik/cloudweave/internal/util/keygen"
	"github.com/imamik/cloudweave/internal/util/labels"
	"github.com/imamik/cloudweave/internal/util/naming"
)

const (
	// Username is the default login user of Ubuntu AMIs.
	Username = "ubuntu"

	// DefaultRootDevice is the root device name of Ubuntu AMIs.
	DefaultRootDevice = "/dev/sda1"

	nameTag = "Name"
)

// Defaults are used for spec fields left empty.
type Defaults struct {
	AMI              string
	InstanceType     string
	KeyName          string
	SubnetID         string
	SecurityGroupIDs []string
	RootDevice       string
}

// Option configures a Backend.
type Option func(*Backend)

// WithTimeouts sets custom timeouts.
func WithTimeouts(t *config.Timeouts) Option {
	return func(b *Backend) { b.timeouts = t }
}

// WithWaiterDelay sets the minimum and maximum delay between waiter polls.
func WithWaiterDelay(minDelay, maxDelay time.Duration) Option {
	return func(b *Backend) {
		b.waitMin = minDelay
		b.waitMax = maxDelay
	}
}

// WithPasswordGenerator replaces the generator used when a spec has no password.
func WithPasswordGenerator(fn func() (string, error)) Option {
	return func(b *Backend) { b.password = fn }
}

// Backend adapts the EC2 API to backend.Backend.
type Backend struct {
	name     string
	api      API
	defaults Defaults
	timeouts *config.Timeouts
	waitMin  time.Duration
	waitMax  time.Duration
	password func() (string, error)
}

var _ backend.Backend = (*Backend)(nil)

// NewBackend creates the backend registered under name.
func NewBackend(name string, api API, defaults Defaults, opts ...Option) *Backend {
	if defaults.RootDevice == "" {
		defaults.RootDevice = DefaultRootDevice
	}
	b := &Backend{
		name:     name,
		api:      api,
		defaults: defaults,
		timeouts: config.LoadTimeouts(),
		waitMin:  5 * time.Second,
		waitMax:  30 * time.Second,
		password: func() (string, error) { return keygen.Password(keygen.DefaultPasswordLength) },
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *Backend) Name() string {
	return b.name
}

// CreateInstances launches every instance of spec in one RunInstances call
// and waits until they are running.
func (b *Backend) CreateInstances(ctx context.Context, spec backend.InstanceSpec) ([]backend.InstanceInfo, error) {
	if err := spec.Validate(); err != nil {
		return nil, fmt.Errorf("invalid instance spec: %w", err)
	}

	password := spec.Password
	if password == "" {
		generated, err := b.password()
		if err != nil {
			return nil, fmt.Errorf("failed to generate password: %w", err)
		}
		password = generated
	}

	input, err := b.runInput(spec, password)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, b.timeouts.ServerCreate)
	defer cancel()

	out, err := b.api.RunInstances(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to run instances: %w", err)
	}

	count := spec.EffectiveCount()
	ids := make([]string, 0, len(out.Instances))
	names := make(map[string]string, len(out.Instances))
	var errs *multierror.Error
	for i, inst := range out.Instances {
		id := aws.ToString(inst.InstanceId)
		ids = append(ids, id)
		names[id] = naming.Instance(spec.Name, i+1, count)
		if err := b.tagName(ctx, id, names[id]); err != nil {
			errs = multierror.Append(errs, err)
		}
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("run instances returned no instances")
	}

	waiter := ec2.NewInstanceRunningWaiter(b.api, func(o *ec2.InstanceRunningWaiterOptions) {
		o.MinDelay = b.waitMin
		o.MaxDelay = b.waitMax
	})
	waitErr := waiter.Wait(ctx, &ec2.DescribeInstancesInput{InstanceIds: ids}, b.timeouts.ServerCreate)
	if waitErr != nil {
		errs = multierror.Append(errs, fmt.Errorf("instances did not reach running: %w", waitErr))
	}

	described, err := b.describe(ctx, &ec2.DescribeInstancesInput{InstanceIds: ids})
	if err != nil {
		errs = multierror.Append(errs, err)
		described = out.Instances
	}

	infos := make([]backend.InstanceInfo, 0, len(described))
	for _, inst := range described {
		info := b.toInfo(inst)
		if name := names[info.ID]; name != "" {
			info.Name = name
		}
		info.Password = password
		if waitErr == nil && info.Status == backend.StatusRunning && info.Address == "" {
			info.Status = backend.StatusUnreachable
		}
		infos = append(infos, info)
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })

	return infos, errs.ErrorOrNil()
}

func (b *Backend) runInput(spec backend.InstanceSpec, password string) (*ec2.RunInstancesInput, error) {
	ami := spec.Image
	if ami == "" {
		ami = b.defaults.AMI
	}
	if ami == "" {
		return nil, fmt.Errorf("no AMI configured for backend %s", b.name)
	}

	instanceType := spec.InstanceType
	if instanceType == "" {
		instanceType = InstanceTypeFor(spec.Resources, b.defaults.InstanceType)
	}

	userData, err := bootstrap.UserData(Username, password, spec.StartupScript)
	if err != nil {
		return nil, err
	}

	count := int32(spec.EffectiveCount())
	input := &ec2.RunInstancesInput{
		ImageId:      aws.String(ami),
		InstanceType: types.InstanceType(instanceType),
		MinCount:     aws.Int32(count),
		MaxCount:     aws.Int32(count),
		UserData:     aws.String(base64.StdEncoding.EncodeToString([]byte(userData))),
		TagSpecifications: []types.TagSpecification{{
			ResourceType: types.ResourceTypeInstance,
			Tags:         b.tags(spec),
		}},
	}

	if b.defaults.KeyName != "" {
		input.KeyName = aws.String(b.defaults.KeyName)
	}
	subnet := spec.Network.Subnet
	if subnet == "" {
		subnet = b.defaults.SubnetID
	}
	if subnet != "" {
		input.SubnetId = aws.String(subnet)
	}
	groups := spec.Network.SecurityGroups
	if len(groups) == 0 {
		groups = b.defaults.SecurityGroupIDs
	}
	input.SecurityGroupIds = groups
	if spec.Network.Zone != "" {
		input.Placement = &types.Placement{AvailabilityZone: aws.String(spec.Network.Zone)}
	}
	if spec.Resources.DiskGB > 0 {
		input.BlockDeviceMappings = []types.BlockDeviceMapping{{
			DeviceName: aws.String(b.defaults.RootDevice),
			Ebs: &types.EbsBlockDevice{
				VolumeSize:          aws.Int32(int32(spec.Resources.DiskGB)),
				DeleteOnTermination: aws.Bool(true),
			},
		}}
	}
	return input, nil
}

func (b *Backend) tags(spec backend.InstanceSpec) []types.Tag {
	all := labels.NewLabelBuilder().
		Merge(spec.Labels).
		WithRole(string(spec.Role)).
		WithBackend(b.name).
		Build()

	keys := make([]string, 0, len(all))
	for k := range all {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	tags := make([]types.Tag, 0, len(keys))
	for _, k := range keys {
		tags = append(tags, types.Tag{Key: aws.String(k), Value: aws.String(all[k])})
	}
	return tags
}

func (b *Backend) tagName(ctx context.Context, id, name string) error {
	_, err := b.api.CreateTags(ctx, &ec2.CreateTagsInput{
		Resources: []string{id},
		Tags:      []types.Tag{{Key: aws.String(nameTag), Value: aws.String(name)}},
	})
	if err != nil {
		return fmt.Errorf("failed to tag %s as %s: %w", id, name, err)
	}
	return nil
}

// ListInstances returns the live instances this backend created.
func (b *Backend) ListInstances(ctx context.Context, filter backend.Filter) ([]backend.InstanceInfo, error) {
	filters := []types.Filter{
		tagFilter(labels.KeyBackend, b.name),
		tagFilter(labels.KeyManagedBy, labels.ManagedByCloudweave),
		liveStates(),
	}
	if filter.Cluster != "" {
		filters = append(filters, tagFilter(labels.KeyCluster, filter.Cluster))
	}
	if filter.Role != "" {
		filters = append(filters, tagFilter(labels.KeyRole, string(filter.Role)))
	}

	instances, err := b.describe(ctx, &ec2.DescribeInstancesInput{Filters: filters})
	if err != nil {
		return nil, err
	}

	var out []backend.InstanceInfo
	for _, inst := range instances {
		info := b.toInfo(inst)
		if filter.Matches(info) {
			out = append(out, info)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (b *Backend) DeleteInstance(ctx context.Context, ref string) error {
	id, err := b.resolve(ctx, ref)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, b.timeouts.Delete)
	defer cancel()
	if _, err := b.api.TerminateInstances(ctx, &ec2.TerminateInstancesInput{InstanceIds: []string{id}}); err != nil {
		return b.mapError(ref, err)
	}
	return nil
}

func (b *Backend) StartInstance(ctx context.Context, ref string) error {
	id, err := b.resolve(ctx, ref)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, b.timeouts.PowerAction)
	defer cancel()
	if _, err := b.api.StartInstances(ctx, &ec2.StartInstancesInput{InstanceIds: []string{id}}); err != nil {
		return b.mapError(ref, err)
	}
	return nil
}

func (b *Backend) StopInstance(ctx context.Context, ref string) error {
	id, err := b.resolve(ctx, ref)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, b.timeouts.PowerAction)
	defer cancel()
	if _, err := b.api.StopInstances(ctx, &ec2.StopInstancesInput{InstanceIds: []string{id}}); err != nil {
		return b.mapError(ref, err)
	}
	return nil
}

// resolve turns an instance ID or Name tag into a live instance ID.
func (b *Backend) resolve(ctx context.Context, ref string) (string, error) {
	input := &ec2.DescribeInstancesInput{
		Filters: []types.Filter{tagFilter(labels.KeyBackend, b.name), liveStates()},
	}
	if strings.HasPrefix(ref, "i-") {
		input.InstanceIds = []string{ref}
	} else {
		input.Filters = append(input.Filters, tagFilter(nameTag, ref))
	}

	instances, err := b.describe(ctx, input)
	if err != nil {
		return "", b.mapError(ref, err)
	}
	switch len(instances) {
	case 0:
		return "", fmt.Errorf("instance %q: %w", ref, backend.ErrNotFound)
	case 1:
		return aws.ToString(instances[0].InstanceId), nil
	default:
		return "", fmt.Errorf("instance name %q is ambiguous: %d matches", ref, len(instances))
	}
}

func (b *Backend) describe(ctx context.Context, input *ec2.DescribeInstancesInput) ([]types.Instance, error) {
	var out []types.Instance
	paginator := ec2.NewDescribeInstancesPaginator(b.api, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to describe instances: %w", err)
		}
		for _, r := range page.Reservations {
			out = append(out, r.Instances...)
		}
	}
	return out, nil
}

// mapError turns EC2 not-found API errors into backend.ErrNotFound.
func (b *Backend) mapError(ref string, err error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) && strings.HasPrefix(apiErr.ErrorCode(), "InvalidInstanceID") {
		return fmt.Errorf("instance %q: %w", ref, backend.ErrNotFound)
	}
	return err
}

func (b *Backend) toInfo(inst types.Instance) backend.InstanceInfo {
	tags := make(map[string]string, len(inst.Tags))
	for _, t := range inst.Tags {
		tags[aws.ToString(t.Key)] = aws.ToString(t.Value)
	}

	info := backend.InstanceInfo{
		Backend:        b.name,
		ID:             aws.ToString(inst.InstanceId),
		Name:           tags[nameTag],
		Role:           backend.Role(tags[labels.KeyRole]),
		Address:        aws.ToString(inst.PublicIpAddress),
		PrivateAddress: aws.ToString(inst.PrivateIpAddress),
		Username:       Username,
		Status:         backend.StatusPending,
		CreatedAt:      aws.ToTime(inst.LaunchTime),
	}
	if inst.State != nil {
		info.Status = toStatus(inst.State.Name)
	}
	return info
}

func toStatus(state types.InstanceStateName) backend.Status {
	switch state {
	case types.InstanceStateNameRunning:
		return backend.StatusRunning
	case types.InstanceStateNameStopped, types.InstanceStateNameStopping:
		return backend.StatusStopped
	case types.InstanceStateNameTerminated, types.InstanceStateNameShuttingDown:
		return backend.StatusFailed
	default:
		return backend.StatusPending
	}
}

func tagFilter(key, value string) types.Filter {
	return types.Filter{Name: aws.String("tag:" + key), Values: []string{value}}
}

func liveStates() types.Filter {
	return types.Filter{
		Name:   aws.String("instance-state-name"),
		Values: []string{"pending", "running", "stopping", "stopped"},
	}
}
