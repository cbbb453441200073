// SPDX-License-Identifier: MPL-2.0

// Package testutil provides helper functions for tests that handle errors
// appropriately, reducing boilerplate and ensuring consistent error handling.
//
// Common helpers include environment variable management (MustSetenv, MustUnsetenv),
// file operations (MustWriteFile, MustMkdirAll) and throwaway git repositories
// built with go-git (NewGitRepo) for exercising commit range resolution and
// tree diffs without a git binary.
package testutil
