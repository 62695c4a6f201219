package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load("orders", "5003")

	if cfg.Service != "orders" {
		t.Errorf("Service = %q, want orders", cfg.Service)
	}
	if cfg.Port != "5003" {
		t.Errorf("Port = %q, want 5003", cfg.Port)
	}
	if cfg.Deps.Timeout != 2*time.Second {
		t.Errorf("Deps.Timeout = %v, want 2s", cfg.Deps.Timeout)
	}
	if cfg.Resolver.SuccessTTL != 30*time.Second {
		t.Errorf("Resolver.SuccessTTL = %v, want 30s", cfg.Resolver.SuccessTTL)
	}
	if cfg.Resolver.FailureTTL != 10*time.Second {
		t.Errorf("Resolver.FailureTTL = %v, want 10s", cfg.Resolver.FailureTTL)
	}
	if cfg.Resolver.MaxWorkers != 8 {
		t.Errorf("Resolver.MaxWorkers = %d, want 8", cfg.Resolver.MaxWorkers)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("ORDERS_PORT", "6003")
	t.Setenv("RESOLVER_MAX_WORKERS", "4")
	t.Setenv("LOOKUP_TIMEOUT_SECONDS", "5")
	t.Setenv("PRODUCTS_BASE", "http://products.internal:8080")

	cfg := Load("orders", "5003")

	if cfg.Port != "6003" {
		t.Errorf("Port = %q, want 6003", cfg.Port)
	}
	if cfg.Resolver.MaxWorkers != 4 {
		t.Errorf("Resolver.MaxWorkers = %d, want 4", cfg.Resolver.MaxWorkers)
	}
	if cfg.Deps.Timeout != 5*time.Second {
		t.Errorf("Deps.Timeout = %v, want 5s", cfg.Deps.Timeout)
	}
	if cfg.Deps.ProductsBase != "http://products.internal:8080" {
		t.Errorf("Deps.ProductsBase = %q", cfg.Deps.ProductsBase)
	}
}

func TestLoad_BadIntFallsBack(t *testing.T) {
	t.Setenv("RESOLVER_MAX_WORKERS", "not-a-number")

	cfg := Load("orders", "5003")
	if cfg.Resolver.MaxWorkers != 8 {
		t.Errorf("Resolver.MaxWorkers = %d, want default 8", cfg.Resolver.MaxWorkers)
	}
}
