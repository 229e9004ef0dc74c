/*
Package ports defines the driven ports (interfaces) of the panmirror converter.

These interfaces decouple the conversion core from the processes, services and
storage backends around it.

# Key Interfaces

  - ASTSource: turns markdown into pandoc JSON (a local pandoc process, a remote
    HTTP service or a fixed in-memory response).
  - DocumentStore: caches converted documents, keyed by a digest of the source.
  - DistributedLocker: de-duplicates identical conversions across replicas.
*/
package ports
