// Package batch imports word lists: it reads one word per line from a file
// and resolves and saves each word through the storage pipeline.
package batch
