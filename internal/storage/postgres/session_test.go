package postgres

import "testing"

func TestConfigDSN(t *testing.T) {
	t.Parallel()

	cfg := Config{
		Host:     "dwhcluster.abc123.us-west-2.redshift.amazonaws.com",
		Port:     5439,
		DBName:   "dwh",
		User:     "dwhuser",
		Password: "Passw0rd",
	}
	want := "host=dwhcluster.abc123.us-west-2.redshift.amazonaws.com port=5439 dbname=dwh user=dwhuser password=Passw0rd"
	if got := cfg.DSN(); got != want {
		t.Fatalf("DSN = %q, want %q", got, want)
	}
}
