package orchestration

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/hashicorp/go-multierror"

	"github.com/imamik/cloudweave/internal/backend"
	"github.com/imamik/cloudweave/internal/bootstrap"
	"github.com/imamik/cloudweave/internal/handshake"
	"github.com/imamik/cloudweave/internal/provisioning"
	"github.com/imamik/cloudweave/internal/util/async"
	"github.com/imamik/cloudweave/internal/util/labels"
)

const (
	phaseManager   = "manager"
	phaseHandshake = "handshake"
	phaseWorkers   = "workers"
)

// managerPhase creates the single manager instance.
type managerPhase struct {
	run *run
}

func (p *managerPhase) Name() string { return phaseManager }

func (p *managerPhase) Provision(ctx *provisioning.Context) error {
	r := p.run
	if err := r.transition(StateManagerProvisioning); err != nil {
		return err
	}

	spec := r.plan.mspec
	b := r.plan.manager

	script, err := r.managerScript(spec)
	if err != nil {
		return &ManagerProvisioningError{Backend: b.Name(), Err: err}
	}
	spec.StartupScript = script
	spec.Labels = instanceLabels(r.plan.cluster, spec)

	provisioning.LogResourceCreating(ctx.Observer, phaseManager, "instance", spec.Name)
	instances, err := r.createInstances(ctx, b, spec)

	var manager *backend.InstanceInfo
	for i := range instances {
		if instances[i].Succeeded() {
			manager = &instances[i]
			break
		}
	}
	if manager == nil && len(instances) > 0 {
		// Keep whatever the backend reported so the caller can clean it up.
		r.result.Manager = &instances[0]
	}
	if manager != nil {
		r.result.Manager = manager
		if serr := r.storeInstance(*manager); serr != nil {
			provisioning.LogResourceFailed(ctx.Observer, phaseManager, "instance", spec.Name, serr)
			return serr
		}
	}

	if err == nil && manager == nil {
		err = fmt.Errorf("backend returned no usable instance")
	}
	if err != nil {
		provisioning.LogResourceFailed(ctx.Observer, phaseManager, "instance", spec.Name, err)
		return &ManagerProvisioningError{Backend: b.Name(), Err: err}
	}
	if len(instances) > 1 {
		ctx.Observer.Printf("[%s] Backend %s returned %d instances for the manager, using %s",
			phaseManager, b.Name(), len(instances), manager.Name)
	}

	r.result.ManagerSucceeded = true
	provisioning.LogResourceCreated(ctx.Observer, phaseManager, "instance", manager.Name, manager.ID)
	return r.transition(StateAwaitingJoinSecret)
}

// handshakePhase polls the manager for the join secret.
type handshakePhase struct {
	run *run
}

func (p *handshakePhase) Name() string { return phaseHandshake }

func (p *handshakePhase) Provision(ctx *provisioning.Context) error {
	r := p.run
	cfg := r.orch.cfg
	manager := r.result.Manager

	creds := handshake.Credentials{Username: manager.Username, Password: manager.Password}
	if creds.Password == "" {
		creds.PrivateKey = cfg.SSHPrivateKey
	}

	var attempts int
	client := handshake.NewClient(r.orch.dialer,
		handshake.WithArtifactPath(cfg.ArtifactPath),
		handshake.WithClock(cfg.Clock),
		handshake.WithObserver(ctx.Observer),
		handshake.WithAttemptHook(func(attempt int, _ error) { attempts = attempt }),
	)

	ctx.Observer.Printf("[%s] Waiting for join secret from %s (%s), up to %d attempts",
		phaseHandshake, manager.Name, manager.Address, cfg.HandshakeAttempts)
	secret, err := client.FetchJoinSecret(ctx, manager.Address, creds, cfg.HandshakeAttempts, cfg.HandshakeDelay)
	RecordHandshakeAttempts(attempts)
	if err != nil {
		var timeout *handshake.TimeoutError
		if !errors.As(err, &timeout) {
			timeout = &handshake.TimeoutError{Address: manager.Address, Attempts: attempts, Last: err}
		}
		return &HandshakeTimeoutError{Manager: manager.Name, Err: timeout}
	}

	r.secret = secret
	r.result.LeaderAddress = secret.LeaderAddress
	ctx.Observer.Printf("[%s] Obtained join secret after %d attempt(s): %s", phaseHandshake, attempts, secret)
	return r.transition(StateWorkersProvisioning)
}

// workersPhase creates every worker group concurrently.
type workersPhase struct {
	run *run
}

func (p *workersPhase) Name() string { return phaseWorkers }

func (p *workersPhase) Provision(ctx *provisioning.Context) error {
	r := p.run
	groups := r.plan.workers

	if len(groups) == 0 {
		ctx.Observer.Printf("[%s] No worker groups requested", phaseWorkers)
		return r.transition(StateDone)
	}

	outcomes := make([]*BackendOutcome, len(groups))
	tasks := make([]async.Task, len(groups))
	var finished atomic.Int32
	for i, g := range groups {
		tasks[i] = async.Task{
			Name: g.spec.Backend,
			Func: func(c context.Context) error {
				defer func() {
					ctx.Observer.Progress(phaseWorkers, int(finished.Add(1)), len(groups))
				}()
				outcomes[i] = r.provisionWorkers(c, ctx.Observer, g)
				return outcomes[i].Err
			},
		}
	}

	failed := 0
	for i, res := range async.RunAll(ctx, tasks) {
		outcome := outcomes[i]
		if outcome == nil {
			outcome = &BackendOutcome{Backend: groups[i].spec.Backend, Requested: groups[i].spec.Count}
		}
		if res.Err != nil && outcome.Err == nil {
			outcome.Err = &WorkerProvisioningError{Backend: outcome.Backend, Err: res.Err}
		}
		if outcome.Err != nil {
			outcome.Error = outcome.Err.Error()
			failed++
		}
		r.result.Workers[outcome.Backend] = outcome
	}

	ctx.Observer.Printf("[%s] %d of %d worker group(s) succeeded", phaseWorkers, len(groups)-failed, len(groups))
	if failed > 0 {
		return r.transition(StatePartial)
	}
	return r.transition(StateDone)
}

// provisionWorkers creates one worker group and stores the credentials of
// every instance that did not fail.
func (r *run) provisionWorkers(ctx context.Context, observer provisioning.Observer, g workerGroup) *BackendOutcome {
	spec := g.spec
	outcome := &BackendOutcome{Backend: spec.Backend, Requested: spec.Count}
	observer = observer.WithFields(map[string]string{"backend": spec.Backend})

	script, err := r.workerScript(spec)
	if err != nil {
		outcome.Err = &WorkerProvisioningError{Backend: spec.Backend, Err: err}
		provisioning.LogResourceFailed(observer, phaseWorkers, "instance group", spec.Name, err)
		return outcome
	}
	spec.StartupScript = script
	spec.Labels = instanceLabels(r.plan.cluster, spec)

	provisioning.LogResourceCreating(observer, phaseWorkers, "instance group", spec.Name)
	instances, err := r.createInstances(ctx, g.backend, spec)
	outcome.Instances = instances

	var errs *multierror.Error
	if err != nil {
		errs = multierror.Append(errs, err)
	}
	unusable := 0
	for _, inst := range instances {
		if !inst.Succeeded() {
			unusable++
			continue
		}
		if serr := r.storeInstance(inst); serr != nil {
			errs = multierror.Append(errs, serr)
		}
	}
	if err == nil && unusable > 0 {
		errs = multierror.Append(errs, fmt.Errorf("%d of %d instances failed", unusable, len(instances)))
	}

	if groupErr := errs.ErrorOrNil(); groupErr != nil {
		outcome.Err = &WorkerProvisioningError{Backend: spec.Backend, Err: groupErr}
		provisioning.LogResourceFailed(observer, phaseWorkers, "instance group", spec.Name, groupErr)
		return outcome
	}

	provisioning.LogResourceCreated(observer, phaseWorkers, "instance group", spec.Name,
		fmt.Sprintf("%d instance(s)", len(instances)))
	return outcome
}

func (r *run) managerScript(spec backend.InstanceSpec) (string, error) {
	template := spec.StartupScript
	if template == "" {
		template = r.plan.templates.Manager
	}
	cfg := r.orch.cfg
	return bootstrap.Compose(backend.RoleManager, template, map[string]string{
		bootstrap.ParamClusterName:    r.plan.cluster,
		bootstrap.ParamArtifactPath:   cfg.ArtifactPath,
		bootstrap.ParamNotifyBotToken: cfg.NotifyBotToken,
		bootstrap.ParamNotifyChatID:   cfg.NotifyChatID,
	})
}

func (r *run) workerScript(spec backend.InstanceSpec) (string, error) {
	template := spec.StartupScript
	if template == "" {
		template = r.plan.templates.Worker
	}
	cfg := r.orch.cfg
	return bootstrap.Compose(backend.RoleWorker, template, map[string]string{
		bootstrap.ParamClusterName:    r.plan.cluster,
		bootstrap.ParamLeaderAddress:  r.secret.LeaderAddress,
		bootstrap.ParamJoinToken:      r.secret.WorkerToken,
		bootstrap.ParamNotifyBotToken: cfg.NotifyBotToken,
		bootstrap.ParamNotifyChatID:   cfg.NotifyChatID,
	})
}

// instanceLabels merges the caller's labels with the ones that identify the
// instance. The identifying labels win.
func instanceLabels(cluster string, spec backend.InstanceSpec) map[string]string {
	return labels.NewLabelBuilder().
		Merge(spec.Labels).
		WithCluster(cluster).
		WithRole(string(spec.Role)).
		WithBackend(spec.Backend).
		Build()
}
