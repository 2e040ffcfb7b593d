package cfg

type (
	App struct {
		Name    string
		Version string
	}

	Mysql struct {
		Host                  string
		Port                  string
		Username              string
		Password              string
		Database              string
		MaxIdleConnection     int
		MaxOpenConnection     int
		MaxLifeTimeConnection int
	}

	Kafka struct {
		Brokers      []string
		ProfileTopic string
		GroupId      string
	}

	GithubApi struct {
		AccessToken       string
		ApiUrl            string
		GraphqlUrl        string
		PerPage           int
		RequestsPerSecond int
		ThrottleDelay     int
		RateLimitResetMin int
	}

	Stats struct {
		EpochYear       int
		FetchTimeoutSec int
	}

	Gateway struct {
		BaseUrl    string
		TimeoutSec int
	}

	Server struct {
		Port             int
		RecentUsersLimit int
	}
)

type Config struct {
	App       App
	Mysql     Mysql
	Kafka     Kafka
	GithubApi GithubApi
	Stats     Stats
	Gateway   Gateway
	Server    Server
}
