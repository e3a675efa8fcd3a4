// Package ec2 implements the compute backend for AWS EC2 on top of
// aws-sdk-go-v2.
//
// One RunInstances call launches every instance of a spec (MinCount equals
// MaxCount), so a spec either gets all of its instances or none. Instances are
// tagged with the cloudweave labels and a per-instance Name tag, awaited with
// the InstanceRunning waiter and described again to pick up public addresses.
//
// Login credentials are set through cloud-init user data: the InstanceSpec password
// or a generated one is assigned to the default ubuntu user.
package ec2
