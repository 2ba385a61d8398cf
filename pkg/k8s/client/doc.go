// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package client provides shared Kubernetes API access for the rest of
// krepis, primarily the ConfigMap reads and writes behind cm:// sources.
//
// GetKubeClient hands out a process-wide singleton so repeated ConfigMap
// operations reuse one connection pool:
//
//	kube, config, err := client.GetKubeClient()
//	if err != nil {
//	    return fmt.Errorf("failed to get kubernetes client: %w", err)
//	}
//	cm, err := kube.CoreV1().ConfigMaps("krepis-system").Get(ctx, "krepis-platforms", metav1.GetOptions{})
//
// Configuration is discovered from the KUBECONFIG environment variable,
// then ~/.kube/config, then the in-cluster service account, so the same
// binary works on a workstation and inside a pod. Commands that take a
// --kubeconfig flag use GetKubeClientWithConfig, which builds a fresh
// client and leaves the singleton alone.
//
// Code that accepts the Interface alias can be tested against
// fake.NewSimpleClientset from k8s.io/client-go/kubernetes/fake without a
// real cluster.
package client
