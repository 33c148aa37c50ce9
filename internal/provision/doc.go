// SPDX-License-Identifier: MPL-2.0

// Package provision requests a shared storage volume from the platform's
// dispatcher service before the pipeline starts.
//
// The dispatcher is called once per execution with the requested capacity
// and answers with the name of the volume claim that every pipeline task
// mounts. The request is authenticated with the execution token the platform
// injects into the environment:
//
//	client := provision.NewClient(provision.DefaultConfig())
//	vol, err := client.Provision(ctx, 100)
//	// vol.Name is exported to the pipeline as K8S_STORAGE_CLAIM_NAME
//
// Failures are returned as *ProvisioningError and are never retried.
package provision
