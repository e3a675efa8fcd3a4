package orchestration_test

import (
	"context"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/imamik/cloudweave/internal/backend"
	"github.com/imamik/cloudweave/internal/orchestration"
	"github.com/imamik/cloudweave/internal/platform/memory"
	"github.com/imamik/cloudweave/internal/provisioning"
	cwtesting "github.com/imamik/cloudweave/internal/testing"
)

var _ = Describe("Cross-backend cluster creation", func() {
	var (
		ctx     context.Context
		cancel  context.CancelFunc
		fixture *cwtesting.ClusterFixture
		orch    *orchestration.Orchestrator
	)

	newOrchestrator := func(opts map[string][]memory.Option) {
		fixture = cwtesting.NewClusterFixtureWithOptions([]string{"hetzner", "aws"}, opts)
		orch = fixture.Orchestrator(orchestration.Config{
			HandshakeAttempts: 4,
			HandshakeDelay:    2 * time.Second,
			Observer:          provisioning.NewLogrObserver(suiteLogger),
		})
	}

	BeforeEach(func() {
		ctx, cancel = context.WithTimeout(context.Background(), 30*time.Second)
		DeferCleanup(cancel)
	})

	Context("when every backend is healthy", func() {
		BeforeEach(func() { newOrchestrator(nil) })

		It("joins workers on another backend to the manager", func() {
			By("splitting five nodes across both backends")
			req := cwtesting.NewRequestBuilder().WithName("mesh").WithTotalNodes(5).Build()
			result, err := orch.CreateCluster(ctx, req)
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Status).To(Equal(orchestration.StateDone))

			By("recording the manager and every worker")
			Expect(result.Workers).To(HaveKey("hetzner"))
			Expect(result.Workers["hetzner"].Instances).To(HaveLen(3))
			Expect(result.Workers["aws"].Instances).To(HaveLen(2))
			Expect(fixture.Store.Len()).To(Equal(6))

			By("listing the cluster's instances per backend")
			listed, err := orch.ListInstances(ctx, "aws", backend.Filter{Cluster: "mesh", Role: backend.RoleWorker})
			Expect(err).NotTo(HaveOccurred())
			Expect(listed).To(HaveLen(2))
		})

		It("runs every lifecycle operation on created instances", func() {
			req := cwtesting.NewRequestBuilder().WithName("life").WithWorkers("aws", 1).Build()
			_, err := orch.CreateCluster(ctx, req)
			Expect(err).NotTo(HaveOccurred())

			Expect(orch.StopInstance(ctx, "aws", "life-worker-aws")).To(Succeed())
			Expect(orch.StartInstance(ctx, "aws", "life-worker-aws")).To(Succeed())

			_, found := orch.Credentials("life-worker-aws")
			Expect(found).To(BeTrue())
			Expect(orch.DeleteInstance(ctx, "aws", "life-worker-aws")).To(Succeed())
			_, found = orch.Credentials("life-worker-aws")
			Expect(found).To(BeFalse())

			By("deleting again without error")
			Expect(orch.DeleteInstance(ctx, "aws", "life-worker-aws")).To(Succeed())
			Expect(orch.AllCredentials()).To(HaveLen(1))
		})
	})

	Context("when the manager never publishes a join secret", func() {
		BeforeEach(func() {
			newOrchestrator(map[string][]memory.Option{"hetzner": {memory.WithoutArtifact()}})
		})

		It("fails after the attempt budget and keeps the manager", func() {
			req := cwtesting.NewRequestBuilder().WithName("stuck").WithWorkers("aws", 2).Build()
			result, err := orch.CreateCluster(ctx, req)

			var timeoutErr *orchestration.HandshakeTimeoutError
			Expect(errors.As(err, &timeoutErr)).To(BeTrue())
			Expect(timeoutErr.Err.Attempts).To(Equal(4))
			Expect(fixture.Clock.Sleeps()).To(Equal([]time.Duration{2 * time.Second, 2 * time.Second, 2 * time.Second}))
			Expect(result.Manager).NotTo(BeNil())
			Expect(fixture.Backends["aws"].Specs()).To(BeEmpty())
		})
	})

	Context("when one worker backend is out of capacity", func() {
		BeforeEach(func() {
			newOrchestrator(map[string][]memory.Option{
				"aws": {memory.WithCreateHook(func(spec backend.InstanceSpec) error {
					if spec.Role == backend.RoleWorker {
						return errors.New("InsufficientInstanceCapacity")
					}
					return nil
				})},
			})
		})

		It("reports PARTIAL with the healthy backend's instances", func() {
			req := cwtesting.NewRequestBuilder().
				WithName("half").
				WithManager("aws").
				WithWorkers("hetzner", 2).
				WithWorkers("aws", 2).
				Build()
			result, err := orch.CreateCluster(ctx, req)
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Status).To(Equal(orchestration.StatePartial))
			Expect(result.Errors()).To(HaveKey("aws"))
			Expect(result.Errors()).NotTo(HaveKey("hetzner"))
			Expect(result.Workers["hetzner"].Instances).To(HaveLen(2))
			Expect(result.Err()).To(MatchError(ContainSubstring("InsufficientInstanceCapacity")))
		})
	})
})
