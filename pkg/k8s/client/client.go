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

package client

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
	"k8s.io/client-go/util/homedir"
)

// Interface aliases kubernetes.Interface so callers can be tested against
// fake.NewSimpleClientset without importing client-go themselves.
type Interface = kubernetes.Interface

var (
	clientOnce   sync.Once
	cachedClient *kubernetes.Clientset
	cachedConfig *rest.Config
	clientErr    error
)

// GetKubeClient returns the process-wide Kubernetes client, creating it on
// first call. The singleton keeps connection pools shared across every
// ConfigMap read and write instead of dialing the API server per operation.
// Configuration is discovered from KUBECONFIG, ~/.kube/config, or the
// in-cluster service account, in that order.
func GetKubeClient() (Interface, *rest.Config, error) {
	clientOnce.Do(func() {
		cachedClient, cachedConfig, clientErr = BuildKubeClient("")
	})
	return cachedClient, cachedConfig, clientErr
}

// GetKubeClientWithConfig builds a client for an explicit kubeconfig path,
// bypassing the singleton cache. CLI commands use it to honor a
// --kubeconfig flag without poisoning the cached default client.
func GetKubeClientWithConfig(kubeconfig string) (Interface, *rest.Config, error) {
	return BuildKubeClient(kubeconfig)
}

// BuildKubeClient creates a new Kubernetes client from the given kubeconfig
// path. An empty path triggers discovery via resolveKubeconfig. Most callers
// want GetKubeClient; this exists for explicit control over the config
// source.
func BuildKubeClient(kubeconfig string) (*kubernetes.Clientset, *rest.Config, error) {
	var config *rest.Config
	var err error

	if kubeconfig == "" {
		kubeconfig = resolveKubeconfig()
	}

	if kubeconfig == "" {
		// No kubeconfig anywhere, assume we are running in a pod.
		config, err = rest.InClusterConfig()
		if err != nil {
			return nil, nil, fmt.Errorf("failed to get in-cluster config: %w", err)
		}
	} else {
		config, err = clientcmd.BuildConfigFromFlags("", kubeconfig)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to build kube config from %s: %w", kubeconfig, err)
		}
	}

	kube, err := kubernetes.NewForConfig(config)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create kubernetes client: %w", err)
	}

	return kube, config, nil
}

// resolveKubeconfig returns the kubeconfig path from KUBECONFIG or the
// default home location, or "" when neither exists.
func resolveKubeconfig() string {
	if path := os.Getenv("KUBECONFIG"); path != "" {
		return path
	}

	path := filepath.Join(homedir.HomeDir(), ".kube", "config")
	if _, err := os.Stat(path); err != nil {
		return ""
	}
	return path
}
