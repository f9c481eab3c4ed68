// Package config provides configuration loading for formtabs.
//
// The configuration is stored in formtabs.json next to the form
// definitions. YAML (formtabs.yaml) works as well. Every key can be
// overridden from the environment with the FORMTABS_ prefix, dots
// replaced by underscores: FORMTABS_SERVER_PORT, FORMTABS_SOURCE_S3_BUCKET.
// A missing file is not an error; defaults apply.
//
// # Configuration File Structure
//
//	{
//	  "source": {
//	    "dir": "forms",
//	    "s3": {
//	      "bucket": "my-forms",
//	      "prefix": "forms/",
//	      "region": "eu-west-1"
//	    }
//	  },
//	  "server": {
//	    "host": "localhost",
//	    "port": 8080
//	  },
//	  "metrics": {
//	    "enabled": true,
//	    "namespace": "formtabs"
//	  },
//	  "tracing": {
//	    "enabled": false
//	  },
//	  "log": {
//	    "level": "info",
//	    "format": "text"
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
