// Package config provides layered configuration for streamkit
// applications.
//
// # Overview
//
// A Loader merges three sources in order: built-in defaults, JSON or
// YAML file layers, and STREAMKIT_* environment variables. Later
// sources override earlier ones field by field; fields a layer does
// not mention keep their previous value. Duration fields accept Go
// duration strings ("250ms", "5s") in files.
//
//	loader := config.NewLoader()
//	loader.AddLayer("config/base.yaml")
//	loader.AddLayer("config/production.json")
//	loader.EnableValidation(true)
//
//	cfg, err := loader.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// # Thread safety
//
// SafeConfig wraps a Config behind an RWMutex for processes that swap
// configuration at runtime. Get and Snapshot hand out deep copies, so
// callers can never mutate the shared state; Update validates before
// swapping.
//
// # Validation
//
// Config.Validate returns classified errors from the errors package;
// every validation failure is an invalid-class error wrapping
// ErrInvalidConfig.
package config
