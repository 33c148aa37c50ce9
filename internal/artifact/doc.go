// SPDX-License-Identifier: MPL-2.0

// Package artifact uploads execution artifacts, such as the pipeline log,
// to remote storage.
//
// Artifacts are addressed by a location of the form
// <prefix>/<pipeline>/<execution>/<file>, where the prefix may carry a URI
// scheme (for example latch:///your_log_dir). Uploader implementations map
// the location onto their own namespace with ObjectKey: MinIOUploader stores
// it as an object key in an S3-compatible bucket, DirUploader as a path below
// a local root directory.
package artifact
