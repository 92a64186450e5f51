// Package memory provides an in-process ports.DocumentStore.
package memory
