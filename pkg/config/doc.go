// Package config provides configuration for the dataframe engine and its CLI.
//
// A Config is built from defaults with NewConfig and optionally overlaid with a
// YAML file through Load. Values of the form ${VAR} inside the file are replaced
// with environment variables before parsing, which keeps DSNs and passwords out
// of checked-in files:
//
//	name: billing-report
//	engine:
//	  workers: 8
//	  builder_size: 1000000
//	logging:
//	  level: debug
//	  encoding: console
//	source:
//	  driver: postgres
//	  dsn: ${BILLING_DSN}
//	  query_timeout: 45s
//
// Embedding applications pass the Config to dataframe.WithConfig so that table
// builders pick up the worker count and default size:
//
//	cfg, err := config.Load("dataframe.yaml")
//	if err != nil {
//	    return err
//	}
//	t, err := dataframe.FromSequences(seqs...).
//	    Options(dataframe.WithConfig(cfg)).
//	    Build()
package config
