// Package config provides configuration parsing for didact servers.
//
// The configuration is stored in didact.json. This package handles loading,
// saving, and validating configuration. Missing fields take defaults.
//
// # Configuration File Structure
//
//	{
//	  "name": "counter",
//	  "server": {
//	    "host": "localhost",
//	    "port": 3000,
//	    "shutdownTimeout": "5s"
//	  },
//	  "scheduler": {
//	    "sliceBudget": "5ms"
//	  },
//	  "log": {
//	    "level": "info",
//	    "format": "text"
//	  },
//	  "metrics": {
//	    "enabled": true,
//	    "path": "/metrics"
//	  },
//	  "tracing": {
//	    "enabled": false,
//	    "serviceName": "didact"
//	  }
//	}
//
// # Usage
//
//	cfg, err := config.Load(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println("Listening on", cfg.Address())
package config
