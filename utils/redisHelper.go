package utils

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"time"

	"bitbucket.org/kargodata/forwarding_backend/config"
)

func GetCacheLifespan() time.Duration {
	lifespan, err := strconv.Atoi(os.Getenv("CACHE_LIFESPAN"))
	if err != nil {
		lifespan = 1
	}
	return time.Duration(lifespan) * time.Hour
}

// get type name of struct
func GetTypeName[T any]() string {
	var v T
	typeOfT := reflect.TypeOf(v)
	return typeOfT.Name()
}

/* Redis */

// store instance under "<Type>:<businessId>:<key>", obj should be a pointer
func StoreRedis[T any](obj any, businessId string, key any) error {
	redisKey := GetTypeName[T]() + ":" + businessId + ":" + fmt.Sprint(key)
	return config.SetRedisObject(redisKey, &obj, GetCacheLifespan())
}

// retrieve instance stored by StoreRedis; false when missing or redis is down
func RetrieveRedis[T any](businessId string, key any) (*T, bool, error) {
	redisKey := GetTypeName[T]() + ":" + businessId + ":" + fmt.Sprint(key)
	var obj T
	exists, err := config.GetRedisObject(redisKey, &obj)
	if err != nil || !exists {
		return nil, false, err
	}
	return &obj, true, nil
}

// drop a cached instance after the underlying row changes
func InvalidateRedis[T any](businessId string, key any) error {
	redisKey := GetTypeName[T]() + ":" + businessId + ":" + fmt.Sprint(key)
	return config.RemoveRedisKey(redisKey)
}
