/*
Package config loads wait-manager settings from YAML or JSON.

# Overview

Settings carries the tunables a host application feeds into a Manager:
default timeouts for single-shot and streaming waits, and a registry size
threshold for leak warnings. Timeout values distinguish "no bound" from
"expire immediately", which plain durations cannot express, so they are
modeled by the Timeout type.

# Basic Usage

Load settings from a file and validate them:

	settings, err := config.FromFile("awaiter.yaml")
	if err != nil {
	    return err
	}

A settings file looks like:

	wait_timeout: 30s
	iteration_timeout: none
	loop_timeout: 5m
	subscription_warn_threshold: 1000

Timeout fields accept a Go duration string ("250ms", "30s"), a bare number
of seconds, or the literal "none" to disable the bound. A zero value is a
real bound that expires immediately. Missing fields keep their defaults
(no bound, no threshold).
*/
package config
