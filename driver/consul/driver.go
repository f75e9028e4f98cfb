package consul

import (
	"context"

	"github.com/hashicorp/consul/api"
	"github.com/mwantia/imagestore/data"
	"github.com/mwantia/imagestore/driver"
)

// Config contains configuration options for the Consul driver
type Config struct {
	// Address of the Consul server (default: "127.0.0.1:8500")
	Address string

	// Token for Consul ACL authentication (optional)
	Token string

	// Datacenter to use (optional)
	Datacenter string

	// Prefix for all record keys in Consul KV (default: "imagestore/")
	Prefix string
}

// ConsulDriver stores each image record as one JSON value in Consul KV under
// a configurable prefix. Inserts use a check-and-set write with ModifyIndex 0,
// which only succeeds for keys that do not exist yet, so duplicate inserts are
// rejected atomically by the store.
//
// Consul has no query language; Search lists the prefix and evaluates the
// query in process. Best suited for small record sets.
type ConsulDriver struct {
	client *api.Client
	kv     *api.KV

	config *Config
}

// NewConsulDriver creates a new Consul-backed image driver.
func NewConsulDriver(config *Config) (*ConsulDriver, error) {
	if config == nil {
		config = &Config{}
	}

	// Set defaults
	if config.Address == "" {
		config.Address = "127.0.0.1:8500"
	}
	if config.Prefix == "" {
		config.Prefix = "imagestore/"
	}

	clientConfig := api.DefaultConfig()
	clientConfig.Address = config.Address
	if config.Token != "" {
		clientConfig.Token = config.Token
	}
	if config.Datacenter != "" {
		clientConfig.Datacenter = config.Datacenter
	}

	client, err := api.NewClient(clientConfig)
	if err != nil {
		return nil, data.StoreUnavailable(err)
	}

	return &ConsulDriver{
		client: client,
		kv:     client.KV(),
		config: config,
	}, nil
}

// Returns the identifier name defined for this driver
func (*ConsulDriver) Name() string {
	return "consul"
}

// Open is part of the lifecycle behaviour and gets called when opening this driver.
func (cd *ConsulDriver) Open(ctx context.Context) error {
	if _, err := cd.client.Status().Leader(); err != nil {
		return data.StoreUnavailable(err)
	}

	return nil
}

// Close is part of the lifecycle behaviour and gets called when closing this driver.
func (cd *ConsulDriver) Close(ctx context.Context) error {
	// The Consul client holds no connection state worth releasing
	return nil
}

// Capabilities returns the set of capabilities supported by this driver.
func (cd *ConsulDriver) Capabilities() *driver.Capabilities {
	return &driver.Capabilities{
		Capabilities: []driver.Capability{
			driver.CapabilityAtomicInsert,
		},
	}
}

func (cd *ConsulDriver) key(identifier string) string {
	return cd.config.Prefix + identifier
}
