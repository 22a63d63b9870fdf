// Package config provides configuration parsing for gaugekit projects.
//
// The configuration is stored in gaugekit.json at the project root.
// This package handles loading, saving, and validating configuration.
//
// # Configuration File Structure
//
//	{
//	  "fixtures": {"dir": "fixtures", "pattern": "*.yaml"},
//	  "harness": {
//	    "separateBuildDocument": true,
//	    "adopt": "unavailable",
//	    "strictAppend": true
//	  },
//	  "reactive": {"panicPolicy": "log"},
//	  "log": {"level": "debug", "format": "json"},
//	  "serve": {"port": 7070, "host": "localhost"},
//	  "snapshots": {
//	    "backend": "s3",
//	    "bucket": "instrument-snapshots",
//	    "prefix": "gauges/",
//	    "region": "eu-west-1"
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
//	fmt.Println("Fixtures:", cfg.FixturesPath())
package config
