package usecase

import (
	"context"
	"strconv"

	"social-publisher/domain/dto"
	"social-publisher/domain/model"
	"social-publisher/domain/repository"
	"social-publisher/infrastructure/configuration"
	"social-publisher/infrastructure/logger"
	"social-publisher/infrastructure/utils"
)

type IUserUsecase interface {
	Login(ctx context.Context, req model.ReqLogin) dto.Res
	Register(ctx context.Context, req model.ReqRegister) dto.Res
}

type userUsecase struct {
	userRepo repository.IUser
}

func NewUserUsecase(userRepo repository.IUser) IUserUsecase {
	return &userUsecase{userRepo: userRepo}
}

func (u *userUsecase) Login(ctx context.Context, req model.ReqLogin) dto.Res {
	user, err := u.userRepo.GetByUserName(ctx, req.UserName)
	if err != nil || user.Password != req.Password {
		return dto.Res{ResponseCode: "401", ResponseMessage: "Invalid username or password"}
	}

	token, err := utils.GenerateToken(map[string]interface{}{
		"user_name": user.UserName,
		"iss":       strconv.FormatInt(user.ID, 10),
	}, configuration.C.App.SecretKey)
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Error while generating token")
		return dto.Res{ResponseCode: "500", ResponseMessage: "Internal server error"}
	}

	return dto.Res{ResponseCode: "200", ResponseMessage: "OK", Data: map[string]string{"token": token}}
}

func (u *userUsecase) Register(ctx context.Context, req model.ReqRegister) dto.Res {
	if _, err := u.userRepo.GetByUserName(ctx, req.UserName); err == nil {
		return dto.Res{ResponseCode: "409", ResponseMessage: "Username already taken"}
	}

	user := model.User{Name: req.Name, UserName: req.UserName, Password: req.Password}
	if err := u.userRepo.CreateUser(ctx, user); err != nil {
		logger.GetLogger().WithField("error", err).Error("Error while creating user")
		return dto.Res{ResponseCode: "500", ResponseMessage: "Internal server error"}
	}
	return dto.Res{ResponseCode: "200", ResponseMessage: "OK"}
}
