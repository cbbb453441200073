// SPDX-License-Identifier: MPL-2.0

package vcs

import (
	"errors"
	"testing"
)

func TestCommitID_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		id      CommitID
		wantErr bool
	}{
		{id: "83baae61804e65cc73a7201a7252750c76066a30"},
		{id: "83BAAE61804E65CC73A7201A7252750C76066A30", wantErr: true},
		{id: "83baae6", wantErr: true},
		{id: "", wantErr: true},
		{id: "zzbaae61804e65cc73a7201a7252750c76066a30", wantErr: true},
	}

	for _, tt := range tests {
		err := tt.id.Validate()
		if (err != nil) != tt.wantErr {
			t.Errorf("CommitID(%q).Validate() error = %v, wantErr %v", tt.id, err, tt.wantErr)
		}
		if err != nil && !errors.Is(err, ErrInvalidCommitID) {
			t.Errorf("expected ErrInvalidCommitID, got %v", err)
		}
	}
}

func TestCommitID_Short(t *testing.T) {
	t.Parallel()

	if got := CommitID("83baae61804e65cc73a7201a7252750c76066a30").Short(); got != "83baae6" {
		t.Errorf("Short() = %q, want %q", got, "83baae6")
	}
	if got := CommitID("abc").Short(); got != "abc" {
		t.Errorf("Short() = %q, want %q", got, "abc")
	}
}

func TestTag_PointsAt(t *testing.T) {
	t.Parallel()

	head := CommitID("83baae61804e65cc73a7201a7252750c76066a30")
	other := CommitID("83baae61804e65cc73a7201a7252750c76066a31")

	if !(Tag{Name: "1.0.0", Commit: head, Peeled: head}).PointsAt(head) {
		t.Error("expected tag peeled to head to point at head")
	}
	if (Tag{Name: "1.0.1", Commit: other, Peeled: other}).PointsAt(head) {
		t.Error("expected tag peeled elsewhere not to point at head")
	}
	if (Tag{Name: "broken", Commit: head}).PointsAt(head) {
		t.Error("expected tag without peeled id never to match")
	}
	if (Tag{Name: "empty"}).PointsAt("") {
		t.Error("expected zero tag not to match zero commit")
	}
}
