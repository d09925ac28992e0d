package domain

import "testing"

func TestReviewStatus_Rank(t *testing.T) {
	t.Parallel()

	if ReviewStatusNeedsReview.Rank() >= ReviewStatusVerified.Rank() {
		t.Fatal("NEEDS_REVIEW must rank below VERIFIED")
	}
	if ReviewStatusVerified.Rank() >= ReviewStatusUserEdited.Rank() {
		t.Fatal("VERIFIED must rank below USER_EDITED")
	}
	if ReviewStatus("bogus").Rank() != 0 {
		t.Fatal("unknown status must rank below all valid statuses")
	}
}

func TestMaxReviewStatus_NeverRegresses(t *testing.T) {
	t.Parallel()

	tests := []struct {
		a, b, want ReviewStatus
	}{
		{ReviewStatusVerified, ReviewStatusNeedsReview, ReviewStatusVerified},
		{ReviewStatusNeedsReview, ReviewStatusVerified, ReviewStatusVerified},
		{ReviewStatusUserEdited, ReviewStatusVerified, ReviewStatusUserEdited},
		{ReviewStatusNeedsReview, ReviewStatusNeedsReview, ReviewStatusNeedsReview},
		{ReviewStatusVerified, ReviewStatus("bogus"), ReviewStatusVerified},
	}
	for _, tt := range tests {
		if got := MaxReviewStatus(tt.a, tt.b); got != tt.want {
			t.Errorf("MaxReviewStatus(%s, %s) = %s, want %s", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestEnums_IsValid(t *testing.T) {
	t.Parallel()

	for _, k := range []EntityKind{EntityKindWork, EntityKindEdition, EntityKindAuthor} {
		if !k.IsValid() {
			t.Errorf("%s should be valid", k)
		}
	}
	if EntityKind("BOOK").IsValid() {
		t.Error("BOOK should not be a valid entity kind")
	}

	for _, f := range []EditionFormat{FormatHardcover, FormatPaperback, FormatEbook, FormatAudiobook, FormatUnknown} {
		if !f.IsValid() {
			t.Errorf("%s should be valid", f)
		}
	}
	if EditionFormat("VINYL").IsValid() {
		t.Error("VINYL should not be a valid format")
	}
}
