package rules_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aqasim81/migrationcop/internal/analyzer/rules"
)

const backfill = `class BackfillUsersSomeColumn < ActiveRecord::Migration[7.0]
  def change
    User.update_all(some_column: 'some value')
  end
end
`

const backfillInBatches = `class BackfillUsersSomeColumn < ActiveRecord::Migration[7.0]
  disable_ddl_transaction!

  def change
    User.in_batches do |relation|
      relation.update_all(some_column: 'some value')
    end
  end
end
`

func TestBatchInBatchesRule_Check(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		src  string
		want []offense
	}{
		{name: "block batches", src: backfillInBatches},
		{name: "inline batches", src: "User.in_batches(of: 100).delete_all\n"},
		{name: "receiver-less call", src: "update_all(some_column: 'some value')\n"},
		{
			name: "update_all",
			src:  backfill,
			want: []offense{{"User.update_all(some_column: 'some value')", "Use `in_batches` in batch processing."}},
		},
		{
			name: "delete_all on a relation",
			src:  "User.where(active: false).delete_all\n",
			want: []offense{{"User.where(active: false).delete_all", "Use `in_batches` in batch processing."}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, inspect(t, rules.NewBatchInBatchesRule(), tt.src))
		})
	}
}

func TestBatchInBatchesRule_correction(t *testing.T) {
	t.Parallel()

	expectCorrection(t, rules.NewBatchInBatchesRule(),
		"User.where(active: false).delete_all\n",
		"User.where(active: false).in_batches.delete_all\n",
	)
}

func TestBatchInTransactionRule_Check(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		src  string
		want []offense
	}{
		{name: "transaction disabled", src: backfillInBatches},
		{
			name: "update_all",
			src:  backfill,
			want: []offense{{"User.update_all(some_column: 'some value')", "Disable transaction in batch processing."}},
		},
		{
			name: "delete_all",
			src:  "class Purge < ActiveRecord::Migration[7.0]\n  def up\n    User.delete_all\n  end\nend\n",
			want: []offense{{"User.delete_all", "Disable transaction in batch processing."}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, inspect(t, rules.NewBatchInTransactionRule(), tt.src))
		})
	}
}

func TestBatchInTransactionRule_correction(t *testing.T) {
	t.Parallel()

	expectCorrection(t, rules.NewBatchInTransactionRule(), backfill,
		`class BackfillUsersSomeColumn < ActiveRecord::Migration[7.0]
  disable_ddl_transaction!

  def change
    User.update_all(some_column: 'some value')
  end
end
`)
}

func TestBatchInTransactionRule_outsideMethodIsNotCorrectable(t *testing.T) {
	t.Parallel()

	result, err := newAnalyzer(t, rules.NewBatchInTransactionRule()).
		Analyze(context.Background(), newMigration("User.delete_all\n"))
	require.NoError(t, err)
	require.Len(t, result.Diagnostics, 1)
	assert.False(t, result.Diagnostics[0].Correctable)
}

func TestBatchWithThrottlingRule_Check(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		src  string
		want []offense
	}{
		{
			name: "sleep in the block",
			src: `class BackfillUsersSomeColumn < ActiveRecord::Migration[7.0]
  disable_ddl_transaction!

  def change
    User.in_batches do |relation|
      relation.update_all(some_column: 'some value')
      sleep(0.01)
    end
  end
end
`,
		},
		{name: "not in a block", src: backfill},
		{
			name: "update_all without sleep",
			src:  backfillInBatches,
			want: []offense{{"relation.update_all(some_column: 'some value')", "Use throttling in batch processing."}},
		},
		{
			name: "delete_all without sleep",
			src:  "User.in_batches do |relation|\n  relation.delete_all\nend\n",
			want: []offense{{"relation.delete_all", "Use throttling in batch processing."}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, inspect(t, rules.NewBatchWithThrottlingRule(), tt.src))
		})
	}
}

func TestBatchWithThrottlingRule_correction(t *testing.T) {
	t.Parallel()

	expectCorrection(t, rules.NewBatchWithThrottlingRule(), backfillInBatches,
		`class BackfillUsersSomeColumn < ActiveRecord::Migration[7.0]
  disable_ddl_transaction!

  def change
    User.in_batches do |relation|
      relation.update_all(some_column: 'some value')
      sleep(0.01)
    end
  end
end
`)
}
