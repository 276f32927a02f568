// Package minio implements blobstore.Store for MinIO and other
// S3-compatible endpoints.
//
// Self-hosted observatories often keep their map archives on MinIO rather
// than AWS; this store speaks to any endpoint the minio-go client supports.
//
// Example:
//
//	client, err := minio.New("play.min.io", &minio.Options{
//		Creds: credentials.NewStaticV4(accessKey, secretKey, ""),
//	})
//	store := echominio.NewStore(client, "sky-data", "maps/")
package minio
