// Package config loads annotation pipelines from YAML.
//
// A pipeline file lists annotators by kind in any order; Registry sorts them by
// dependency. Kind-specific options are decoded strictly, and resource files
// (stoplists, phrase dictionaries, taxonomies) are resolved relative to the pipeline file.
package config
