package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCategoryType(t *testing.T) {
	tests := []struct {
		input   string
		want    CategoryType
		wantErr bool
	}{
		{input: "RECEITA", want: CategoryTypeIncome},
		{input: "income", want: CategoryTypeIncome},
		{input: " despesa ", want: CategoryTypeExpense},
		{input: "EXPENSE", want: CategoryTypeExpense},
		{input: "transfer", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseCategoryType(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestKindCategoryTypeRoundTrip(t *testing.T) {
	assert.Equal(t, KindIncome, KindIncome.CategoryType().Kind())
	assert.Equal(t, KindExpense, KindExpense.CategoryType().Kind())
}

func TestUserDisplayName(t *testing.T) {
	tests := []struct {
		name string
		user User
		want string
	}{
		{
			name: "individual",
			user: User{Email: "ana@example.com", Individual: &Individual{Name: "Ana"}},
			want: "Ana",
		},
		{
			name: "company",
			user: User{Email: "acme@example.com", Company: &Company{LegalName: "ACME Ltda"}},
			want: "ACME Ltda",
		},
		{
			name: "email fallback",
			user: User{Email: "who@example.com", Individual: &Individual{}},
			want: "who@example.com",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.user.DisplayName())
		})
	}
}

func TestParsePendingStatus(t *testing.T) {
	got, err := ParsePendingStatus("")
	require.NoError(t, err)
	assert.Equal(t, StatusAll, got)

	got, err = ParsePendingStatus("pending")
	require.NoError(t, err)
	assert.Equal(t, StatusPending, got)

	got, err = ParsePendingStatus("paid")
	require.NoError(t, err)
	assert.Equal(t, StatusSettled, got)

	_, err = ParsePendingStatus("maybe")
	assert.Error(t, err)
}

func TestFilterCriteriaIsZero(t *testing.T) {
	assert.True(t, FilterCriteria{}.IsZero())
	assert.True(t, FilterCriteria{Status: StatusAll}.IsZero())
	assert.False(t, FilterCriteria{Status: StatusPending}.IsZero())
	assert.False(t, FilterCriteria{CategoryID: 3}.IsZero())
	assert.False(t, FilterCriteria{StartDate: "2024-01-01"}.IsZero())
}
